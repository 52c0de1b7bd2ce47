package ecs

import "slices"

// System runs once per frame after entity updates and the collision pass.
type System interface {
	Update(w *World, dt float64)
}

// SystemFunc adapts a function to System.
type SystemFunc func(w *World, dt float64)

func (f SystemFunc) Update(w *World, dt float64) {
	f(w, dt)
}

// Scheduler runs a world's systems in the order they were added.
type Scheduler struct {
	systems []System
}

func NewScheduler(systems ...System) *Scheduler {
	return &Scheduler{systems: slices.DeleteFunc(slices.Clone(systems), isNilSystem)}
}

// Add appends system; nil is ignored.
func (s *Scheduler) Add(system System) {
	if isNilSystem(system) {
		return
	}
	s.systems = append(s.systems, system)
}

// Update runs every system once with the frame's step.
func (s *Scheduler) Update(w *World, dt float64) {
	for _, system := range s.systems {
		system.Update(w, dt)
	}
}

func (s *Scheduler) Systems() []System {
	return slices.Clone(s.systems)
}

func isNilSystem(s System) bool {
	return s == nil
}
