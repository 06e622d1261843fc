package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/analysis"
)

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <profile.yaml>",
		Short: "Check a scoring profile file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := analysis.LoadProfileFile(args[0])
			if err != nil {
				return err
			}
			out := map[string]interface{}{"file": args[0], "name": cfg.Name, "valid": true}
			return c.print(cmd.OutOrStdout(), out, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s: valid (based on %s)\n", args[0], cfg.Name)
				return err
			})
		},
	}
}

func (c *cli) profileCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "profile [name]",
		Short: "Print a scoring profile as YAML",
		Long: `Profile prints the named profile, or the configured one, with every
constant resolved. Stored files override built-in profiles of the same name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := c.store()
			w := cmd.OutOrStdout()

			if list {
				names, err := store.Names()
				if err != nil {
					return err
				}
				return c.print(w, names, func(w io.Writer) error {
					for _, n := range names {
						if _, err := fmt.Fprintln(w, n); err != nil {
							return err
						}
					}
					return nil
				})
			}

			name := c.v.GetString("profile")
			if len(args) == 1 {
				name = args[0]
			}
			cfg, err := store.Load(name)
			if err != nil {
				return err
			}
			return c.print(w, cfg, func(w io.Writer) error {
				data, err := analysis.EncodeProfile(cfg)
				if err != nil {
					return err
				}
				_, err = w.Write(data)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "list available profile names")
	return cmd
}
