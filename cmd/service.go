// Copyright 2026 CleverData
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cleverdata/notion-cleaner/internal/core"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const serviceName = "NotionCleaner"

// program implements the service.Interface
type program struct {
	paths  []string
	opts   core.WatchOptions
	logger service.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx)
	return nil
}

func (p *program) Stop(s service.Service) error {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
	return nil
}

func (p *program) run(ctx context.Context) {
	defer close(p.done)
	logger := p.logger
	if logger == nil {
		logger = service.ConsoleLogger
	}
	core.WatchConfigs(ctx, p.paths, p.opts, logger)
}

func getService(paths []string, opts core.WatchOptions) (service.Service, error) {
	prg := &program{paths: paths, opts: opts}
	s, err := service.New(prg, serviceConfig(paths, opts))
	if err != nil {
		return nil, err
	}
	if logger, err := s.Logger(nil); err == nil {
		prg.logger = logger
	}
	return s, nil
}

// serviceConfig builds the service definition; the service runs
// "watch" with the same schedule, history, dry-run and debug settings as
// the install call.
func serviceConfig(paths []string, opts core.WatchOptions) *service.Config {
	args := []string{"watch"}
	if opts.Interval != "" {
		args = append(args, "--interval", opts.Interval)
	}
	if opts.SettlingDelay != "" {
		args = append(args, "--settle", opts.SettlingDelay)
	}
	if opts.DisableFsnotify {
		args = append(args, "--no-fsnotify")
	}
	if p := viper.GetString("history-db"); p != "" {
		args = append(args, "--history-db", p)
	}
	if viper.GetBool("no-history") {
		args = append(args, "--no-history")
	}
	if viper.GetBool("dry-run") {
		args = append(args, "--dry-run")
	}
	if viper.GetBool("debug") {
		args = append(args, "--debug")
	}
	args = append(args, paths...)

	return &service.Config{
		Name:        serviceName,
		DisplayName: "Notion Cleaner",
		Description: "Periodically removes empty rows from Notion databases.",
		Arguments:   args,
	}
}

// controlService returns a handle good enough to start, stop or query the
// installed service.
func controlService() (service.Service, error) {
	return service.New(&program{}, &service.Config{Name: serviceName})
}

var installCmd = &cobra.Command{
	Use:   "install config [config ...]",
	Short: "Install notion-cleaner as a system service",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// The service manager starts us elsewhere, so pin absolute paths.
		paths := make([]string, 0, len(args))
		for _, a := range args {
			abs, err := filepath.Abs(a)
			if err != nil {
				return fmt.Errorf("invalid path %s: %w", a, err)
			}
			paths = append(paths, abs)
		}

		s, err := getService(paths, watchOptions(cmd))
		if err != nil {
			return fmt.Errorf("setup failed: %w", err)
		}

		if status, err := s.Status(); err == nil {
			fmt.Println("notion-cleaner is already installed.")
			if status == service.StatusRunning {
				fmt.Println("Service is currently RUNNING.")
			} else {
				fmt.Println("Service is currently STOPPED.")
			}
			fmt.Println("Use 'notion-cleaner uninstall' first to change its configuration.")
			return nil
		}

		fmt.Println("Installing notion-cleaner service...")
		if err := s.Install(); err != nil {
			fmt.Println("Hint: installing a system service usually requires root/Administrator.")
			return fmt.Errorf("failed to install: %w", err)
		}
		fmt.Println("Service installed successfully.")

		fmt.Println("Starting service...")
		if err := s.Start(); err != nil {
			return fmt.Errorf("failed to start: %w", err)
		}
		fmt.Println("Service started.")
		return nil
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the notion-cleaner service",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := controlService()
		if err != nil {
			return err
		}

		// Ignore stop errors, it might not be running
		_ = s.Stop()

		if err := s.Uninstall(); err != nil {
			return fmt.Errorf("failed to uninstall: %w", err)
		}
		fmt.Println("Service uninstalled.")
		return nil
	},
}

// serviceAction builds the start/stop/restart commands, which differ only
// in the control call they make.
func serviceAction(use, short, verb string, action func(service.Service) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := controlService()
			if err != nil {
				return err
			}
			fmt.Printf("%s notion-cleaner service...\n", verb)
			if err := action(s); err != nil {
				return fmt.Errorf("failed to %s: %w", use, err)
			}
			fmt.Println("Done.")
			return nil
		},
	}
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the status of the notion-cleaner service",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := controlService()
		if err != nil {
			return err
		}

		status, err := s.Status()
		if err != nil {
			return fmt.Errorf("could not get status: %w", err)
		}

		statusStr := "Unknown"
		switch status {
		case service.StatusRunning:
			statusStr = "Running"
		case service.StatusStopped:
			statusStr = "Stopped"
		}

		fmt.Printf("notion-cleaner service status: %s\n", statusStr)
		return nil
	},
}

func init() {
	addWatchFlags(installCmd)

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(serviceAction("start", "Start the notion-cleaner service", "Starting", service.Service.Start))
	rootCmd.AddCommand(serviceAction("stop", "Stop the notion-cleaner service", "Stopping", service.Service.Stop))
	rootCmd.AddCommand(serviceAction("restart", "Restart the notion-cleaner service", "Restarting", service.Service.Restart))
	rootCmd.AddCommand(statusCmd)
}
