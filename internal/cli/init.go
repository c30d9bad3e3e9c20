package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/hunny0025/armoriq-supervisor/internal/cli/wizard"
	"github.com/hunny0025/armoriq-supervisor/internal/risk"
	"github.com/hunny0025/armoriq-supervisor/internal/scope"
)

const configFilename = ".armoriq.yaml"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the sandbox layout, policies and configuration",
	Long: `Create the sandbox directories and sample files, a default policies file
granting each stock agent one action inside the sandbox, and a .armoriq.yaml
configuration. Existing files are kept unless --force is given.

Example:
  armoriq init
  armoriq init --root sandbox --protected system,secrets`,
	Args: cobra.NoArgs,
	RunE: initProject,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("dir", ".", "Base directory declared paths resolve against")
	initCmd.Flags().String("root", "workspace", "Sandbox root relative to --dir")
	initCmd.Flags().String("protected", risk.DefaultProtectedRoot, "Protected roots (comma-separated)")
	initCmd.Flags().Bool("force", false, "Overwrite existing policies and config")
}

type projectConfig struct {
	Sandbox struct {
		BaseDir        string   `yaml:"base_dir"`
		Root           string   `yaml:"root"`
		ProtectedRoots []string `yaml:"protected_roots"`
	} `yaml:"sandbox"`
	Policies struct {
		Path string `yaml:"path"`
	} `yaml:"policies"`
	Ledger struct {
		Path string `yaml:"path"`
	} `yaml:"ledger"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`
	Execution struct {
		StatusTimeout string `yaml:"status_timeout"`
		Simulate      bool   `yaml:"simulate"`
	} `yaml:"execution"`
}

// seedFile is a sample file created once and never overwritten.
type seedFile struct {
	path    string
	content string
}

// layout describes what init creates under a base directory.
type layout struct {
	base      string
	root      string
	protected []string
}

func (l layout) dirs() []string {
	dirs := []string{
		filepath.Join(l.root, "temp"),
		filepath.Join(l.root, "logs"),
		filepath.Join(l.root, "archive"),
	}
	return append(dirs, l.protected...)
}

func (l layout) seeds() []seedFile {
	seeds := []seedFile{
		{path: filepath.Join(l.root, "temp", "file.tmp"), content: "Temporary file content.\n"},
		{path: filepath.Join(l.root, "log.txt"), content: "This is a log file.\n"},
	}
	for _, p := range l.protected {
		seeds = append(seeds, seedFile{path: filepath.Join(p, "config"), content: "[mock system config]\n"})
	}
	return seeds
}

func (l layout) config() projectConfig {
	var cfg projectConfig
	cfg.Sandbox.BaseDir = "."
	cfg.Sandbox.Root = l.root
	cfg.Sandbox.ProtectedRoots = l.protected
	cfg.Policies.Path = "policies.yaml"
	cfg.Ledger.Path = "history.jsonl"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Log.File = "logs.txt"
	cfg.Execution.StatusTimeout = "10s"
	return cfg
}

// confirmFunc decides whether an existing file is replaced.
type confirmFunc func(path string) (bool, error)

func initProject(cmd *cobra.Command, args []string) error {
	l := layout{}
	l.base, _ = cmd.Flags().GetString("dir")
	l.root, _ = cmd.Flags().GetString("root")
	protected, _ := cmd.Flags().GetString("protected")
	l.protected = wizard.ParseList(protected)
	if len(l.protected) == 0 {
		return errors.New("at least one protected root is required")
	}

	force, _ := cmd.Flags().GetBool("force")
	confirm := func(string) (bool, error) { return force, nil }
	if !force && term.IsTerminal(int(os.Stdin.Fd())) {
		confirm = wizard.ConfirmOverwrite
	}

	out := cmd.OutOrStdout()
	if err := seedProject(out, l, confirm); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Review the agents and paths in policies.yaml")
	fmt.Fprintln(out, "  2. Run 'armoriq run --simulate clean and organize workspace' to preview decisions")
	fmt.Fprintln(out, "  3. Run 'armoriq shell' for an interactive session")
	return nil
}

func seedProject(out io.Writer, l layout, confirm confirmFunc) error {
	for _, d := range l.dirs() {
		if err := os.MkdirAll(filepath.Join(l.base, d), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}

	for _, s := range l.seeds() {
		created, err := writeIfAbsent(filepath.Join(l.base, s.path), []byte(s.content))
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(out, "Created %s\n", s.path)
		}
	}

	policies, err := scope.DefaultRegistry(l.root).Encode()
	if err != nil {
		return err
	}
	policyHeader := "# ArmorIQ capability registry\n# Each agent may issue only its allowed actions on paths under its allowed roots.\n\n"
	if err := writeConfigFile(out, filepath.Join(l.base, "policies.yaml"), append([]byte(policyHeader), policies...), confirm); err != nil {
		return err
	}

	data, err := yaml.Marshal(l.config())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	configHeader := "# ArmorIQ Configuration\n# Paths are relative to the directory armoriq runs in.\n\n"
	return writeConfigFile(out, filepath.Join(l.base, configFilename), append([]byte(configHeader), data...), confirm)
}

func writeConfigFile(out io.Writer, path string, data []byte, confirm confirmFunc) error {
	if _, err := os.Stat(path); err == nil {
		ok, err := confirm(path)
		if err != nil {
			return fmt.Errorf("prompt cancelled: %w", err)
		}
		if !ok {
			fmt.Fprintf(out, "Kept existing %s\n", path)
			return nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

func writeIfAbsent(path string, data []byte) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, f.Close()
}
