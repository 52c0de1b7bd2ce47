package main

import (
	"fmt"

	"github.com/milk9111/scenecore/ecs/component"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func NewValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "validate [scene...]",
		Short:   "Build scenes and report every entity or component that fails",
		Example: "scenectl validate demo prefabs/level2.yaml",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := root.open()
			if err != nil {
				return err
			}
			defer a.Close()

			var errs error
			for _, name := range args {
				if err := a.LoadScene(name); err != nil {
					errs = multierr.Append(errs, err)
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", name, err)
					continue
				}
				// Instantiating scripts surfaces compile errors.
				var sceneErr error
				for _, e := range a.World.Entities() {
					for _, c := range e.ComponentsOf(component.KindScript) {
						s := c.(*component.Script)
						inst, err := a.Scripts.Instantiate(s.ScriptName())
						if err != nil {
							sceneErr = multierr.Append(sceneErr, fmt.Errorf("%s: entity %q: %w", name, e.Name, err))
							continue
						}
						_ = inst.Release()
					}
				}
				if sceneErr != nil {
					errs = multierr.Append(errs, sceneErr)
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", name, sceneErr)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%d entities)\n", name, a.World.Len())
			}
			return errs
		},
	}
}
