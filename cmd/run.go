package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	godaemon "github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"

	"github.com/bnema/mousemux/internal/config"
	"github.com/bnema/mousemux/internal/daemon"
	"github.com/bnema/mousemux/internal/host"
	"github.com/bnema/mousemux/internal/ipc"
	"github.com/bnema/mousemux/internal/logger"
	"github.com/bnema/mousemux/internal/ui"
)

var flagDetach bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the mousemux daemon",
	Long: `Run the device processor in the foreground, or detached with --detach.
Only one instance per user can run at a time.`,
	RunE: runDaemon,
}

func init() {
	runCmd.Flags().BoolVarP(&flagDetach, "detach", "d", false, "Detach and run in the background")
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if ipc.IsRunning() {
		return ipc.ErrAlreadyRunning
	}

	if flagDetach {
		dctx := &godaemon.Context{
			PidFileName: runtimeFile("mousemux.pid"),
			PidFilePerm: 0644,
			LogFileName: stateFile("mousemux.log"),
			LogFilePerm: 0640,
			Umask:       027,
		}
		child, err := dctx.Reborn()
		if err != nil {
			return fmt.Errorf("failed to detach: %w", err)
		}
		if child != nil {
			fmt.Println(ui.SuccessStyle.Render(ui.IconSuccess) +
				fmt.Sprintf(" mousemux daemon started (pid %d)", child.Pid))
			return nil
		}
		defer func() {
			if err := dctx.Release(); err != nil {
				logger.Warnf("Failed to release pidfile: %v", err)
			}
		}()
	}

	h, err := host.Create()
	if err != nil {
		return err
	}

	d, err := daemon.New(h, *config.Get())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return d.Run(ctx)
}

// runtimeFile places a file in the user's runtime dir, falling back to
// /tmp.
func runtimeFile(name string) string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(os.TempDir(), name)
}

// stateFile places a file under ~/.local/state/mousemux, falling back to
// /tmp.
func stateFile(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), name)
	}
	dir := filepath.Join(home, ".local", "state", "mousemux")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return filepath.Join(os.TempDir(), name)
	}
	return filepath.Join(dir, name)
}
