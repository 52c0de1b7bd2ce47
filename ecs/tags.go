package ecs

import (
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	MaxTags      = 32
	MaxTagLength = 16
)

// canonicalTag lowercases tag. It reports false for tags that can never be stored.
func canonicalTag(tag string) (string, bool) {
	n := utf8.RuneCountInString(tag)
	if n == 0 || n > MaxTagLength {
		return "", false
	}
	return strings.ToLower(tag), true
}

// AddTag stores tag in lowercase. It fails for a duplicate (ignoring case),
// an empty or overlong tag, or when the entity already has MaxTags.
func (e *Entity) AddTag(tag string) bool {
	t, ok := canonicalTag(tag)
	if !ok || len(e.tags) >= MaxTags || slices.Contains(e.tags, t) {
		return false
	}
	e.tags = append(slices.Clip(e.tags), t)
	return true
}

func (e *Entity) RemoveTag(tag string) bool {
	t, ok := canonicalTag(tag)
	if !ok {
		return false
	}
	i := slices.Index(e.tags, t)
	if i < 0 {
		return false
	}
	e.tags = slices.Delete(slices.Clone(e.tags), i, i+1)
	return true
}

func (e *Entity) HasTag(tag string) bool {
	t, ok := canonicalTag(tag)
	return ok && slices.Contains(e.tags, t)
}

func (e *Entity) Tags() []string {
	return slices.Clone(e.tags)
}
