package main

import (
	"fmt"

	"github.com/milk9111/scenecore/ecs"
	"github.com/milk9111/scenecore/persist"
	"github.com/spf13/cobra"
)

func NewSimulateCmd(root *rootOptions) *cobra.Command {
	var (
		frames   int
		scene    string
		restore  string
		savePath string
		quiet    bool
	)
	cmd := &cobra.Command{
		Use:     "simulate",
		Short:   "Step a scene for a number of frames and print collision transitions",
		Example: "scenectl simulate --frames 600 --scene demo",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if frames < 0 {
				return fmt.Errorf("frames must not be negative, got %d", frames)
			}
			a, err := root.open()
			if err != nil {
				return err
			}
			defer a.Close()

			if restore != "" {
				if _, err := persist.Load(a.World, restore); err != nil {
					return err
				}
			} else if err := a.LoadScene(scene); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			counts := map[ecs.CollisionState]int{}
			for range frames {
				a.Step()
				for _, ev := range a.World.Events() {
					counts[ev.State]++
					if !quiet {
						fmt.Fprintf(out, "%6d %-5s %s <-> %s\n", ev.Frame, ev.State, label(ev.A), label(ev.B))
					}
				}
			}
			fmt.Fprintf(out, "frames=%d entities=%d enter=%d stay=%d leave=%d\n",
				a.World.Frame(), a.World.Len(),
				counts[ecs.CollisionEnter], counts[ecs.CollisionStay], counts[ecs.CollisionLeave])

			if savePath != "" {
				if err := persist.Save(a.World, savePath); err != nil {
					return err
				}
				fmt.Fprintf(out, "saved %s\n", savePath)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 300, "frames to simulate")
	cmd.Flags().StringVar(&scene, "scene", "", "scene file (defaults to the config's scene)")
	cmd.Flags().StringVar(&restore, "restore", "", "start from a snapshot instead of a scene")
	cmd.Flags().StringVar(&savePath, "save", "", "write a snapshot after the last frame")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print only the summary")
	return cmd
}

func label(e *ecs.Entity) string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID().String()[:8]
}
