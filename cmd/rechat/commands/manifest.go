package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rechat/internal/manifest"
)

const defaultManifestPath = "packaging/buildozer.spec"

var errManifestInvalid = errors.New("manifest has errors")

func manifestPath(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return defaultManifestPath
}

func manifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Work with the Android packaging manifest (buildozer.spec)",
	}
	cmd.AddCommand(manifestCheckCmd(), manifestShowCmd(), manifestInitCmd(), manifestFilesCmd())
	return cmd
}

func manifestCheckCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Validate a manifest and list findings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifestPath(args)
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			findings, err := manifest.Check(data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range findings {
				fmt.Fprintln(out, f)
			}
			if manifest.HasErrors(findings) || (strict && len(findings) > 0) {
				return fmt.Errorf("%s: %w", path, errManifestInvalid)
			}
			fmt.Fprintf(out, "%s: ok\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func manifestShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [path]",
		Short: "Print a manifest in normalized form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(manifestPath(args))
			if err != nil {
				return err
			}
			return m.Encode(cmd.OutOrStdout())
		},
	}
}

func manifestInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifestPath(args)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := manifest.Default().Encode(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing manifest")
	return cmd
}

func manifestFilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files [path]",
		Short: "List the files a manifest would bundle",
		Long:  "List the files under source.dir, relative to the manifest's directory, that match source.include_exts.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifestPath(args)
			m, err := manifest.Load(path)
			if err != nil {
				return err
			}
			files, err := m.IncludedFiles(os.DirFS(filepath.Dir(path)))
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}
