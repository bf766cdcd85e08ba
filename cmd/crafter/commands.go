package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/provide-io/crafter/pkg/meta"
	"github.com/provide-io/crafter/pkg/pipeline"
	"github.com/provide-io/crafter/pkg/profile"
)

func newNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <profile> <version>",
		Short: "Create a profile for a game version",
		Args:  args(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, a []string) error {
			env, _, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			p, err := env.CreateProfile(cmd.Context(), a[0], a[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created profile %s (%s)\n", p.Name, p.Version)
			return nil
		},
	}
}

func newEditCmd() *cobra.Command {
	var unset bool
	cmd := &cobra.Command{
		Use:   "edit <profile> <key> [value]",
		Short: "Set or remove a profile config override",
		Args:  args(cobra.RangeArgs(2, 3)),
		RunE: func(cmd *cobra.Command, a []string) error {
			if unset == (len(a) == 3) {
				return &usageError{err: errors.New("give either a value or --unset")}
			}
			env, logger, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			_, paths, err := env.Profile(a[0])
			if err != nil {
				return err
			}
			var value *string
			if !unset {
				value = &a[2]
			}
			return profile.EditConfig(paths, a[1], value, logger)
		},
	}
	cmd.Flags().BoolVar(&unset, "unset", false, "Remove the key instead of setting it")
	return cmd
}

func newInstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install <profile>",
		Short: "Download everything a profile needs",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			env, _, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			p, err := pipeline.New(env, a[0])
			if err != nil {
				return err
			}
			return p.Install(cmd.Context())
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <profile>",
		Short: "Install a profile if needed and launch it",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			env, _, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			p, err := pipeline.New(env, a[0])
			if err != nil {
				return err
			}
			if err := p.Install(cmd.Context()); err != nil {
				return err
			}
			return p.Execute(cmd.Context())
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, a []string) error {
			env, _, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tINSTALLED")
			for _, p := range env.Registry.List() {
				_, paths, _ := env.Profile(p.Name)
				fmt.Fprintf(w, "%s\t%s\t%t\n", p.Name, p.Version, profile.IsComplete(paths, p.Version))
			}
			return w.Flush()
		},
	}
}

func newVersionsCmd() *cobra.Command {
	var kinds []string
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List game versions from the version manifest",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, a []string) error {
			env, _, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			m, err := env.Manifest(cmd.Context())
			if err != nil {
				return err
			}
			filter := make([]meta.VersionKind, 0, len(kinds))
			for _, k := range kinds {
				filter = append(filter, meta.VersionKind(k))
			}
			for _, v := range m.Filter(filter...) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", v.ID, v.Type)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "type", nil, "Only list these kinds (release, snapshot, old_beta, old_alpha)")
	return cmd
}

func newJavaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "java",
		Short: "List discovered Java installations, newest first",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, a []string) error {
			env, _, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			for _, inst := range env.Java {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", inst.Version, inst.Path)
			}
			return nil
		},
	}
}
