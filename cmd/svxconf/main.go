package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/svxtools/svxconf/pkg/backup"
	"github.com/svxtools/svxconf/pkg/bus"
	"github.com/svxtools/svxconf/pkg/logger"
	"github.com/svxtools/svxconf/pkg/svxconf"
	"github.com/svxtools/svxconf/pkg/toolconfig"
	"github.com/svxtools/svxconf/pkg/version"
)

var (
	toolConfigPath string
	svxlinkConf    string
	backupDir      string
	verbose        bool

	cfg       *toolconfig.Config
	backupMgr *backup.Manager
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "svxconf",
		Short: "svxconf - svxlink configuration tool",
		Long:  "A configuration management tool for svxlink.conf: typed sections, remote node handling and backups",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				logger.SetLevel(slog.LevelDebug)
			}

			var err error
			cfg, err = toolconfig.Load(toolConfigPath)
			if err != nil {
				return err
			}

			// Flags win over the settings file
			if svxlinkConf != "" {
				cfg.General.SvxlinkConf = svxlinkConf
			}
			if backupDir != "" {
				cfg.General.BackupDir = backupDir
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid svxconf configuration: %w", err)
			}

			backupMgr = backup.NewManager(cfg.General.BackupDir)

			subscribeEventLog()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			bus.GlobalBus.Stop()
		},
	}

	rootCmd.PersistentFlags().StringVar(&toolConfigPath, "config", "", "svxconf settings file (default "+toolconfig.DefaultConfigPath+")")
	rootCmd.PersistentFlags().StringVarP(&svxlinkConf, "svxlink-conf", "f", "", "svxlink.conf to manage (default "+toolconfig.DefaultSvxlinkConf+")")
	rootCmd.PersistentFlags().StringVar(&backupDir, "backup-dir", "", "Backup directory (default "+toolconfig.DefaultBackupDir+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Document commands
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(getCmd)

	// Remote node commands
	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(addNodeCmd)

	// Backup commands
	rootCmd.AddCommand(backupCmd)

	rootCmd.AddCommand(versionCmd)

	// API server
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// subscribeEventLog records document lifecycle events at debug level
func subscribeEventLog() {
	for _, et := range []bus.EventType{
		bus.EventSectionAdded,
		bus.EventDocumentWritten,
		bus.EventBackupCreated,
		bus.EventBackupRestored,
		bus.EventProbeFinished,
	} {
		bus.Subscribe(et, func(e bus.Event) {
			logger.Debug("Event", "type", string(e.Type), "section", e.Section, "data", e.Data)
		})
	}
}

func loadDocument() (*svxconf.Document, error) {
	return svxconf.Load(cfg.General.SvxlinkConf)
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the whole svxlink configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument()
		if err != nil {
			return err
		}
		return doc.WriteTo(os.Stdout)
	},
}

var getCmd = &cobra.Command{
	Use:   "get <section> <option>",
	Short: "Print one option value (e.g. NodeA TCP_PORT)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument()
		if err != nil {
			return err
		}

		value, err := doc.Get(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List remote nodes (TYPE=Net sections)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		probe, _ := cmd.Flags().GetBool("check")

		doc, err := loadDocument()
		if err != nil {
			return err
		}

		nodes, err := doc.RemoteNodes()
		if err != nil {
			return err
		}

		if len(nodes) == 0 {
			fmt.Println("No remote nodes configured")
			return nil
		}

		for _, node := range nodes {
			host, _ := node.Get("HOST")
			port, _ := node.Get("TCP_PORT")

			if !probe {
				fmt.Printf("%s\t%s:%s\n", node.SectionName(), host, port)
				continue
			}

			node.SetProbeTimeout(cfg.Probe.Timeout())
			online, err := node.IsOnline()
			status := "offline"
			if err != nil {
				status = fmt.Sprintf("unknown (%v)", err)
			} else if online {
				status = "online"
			}
			bus.Publish(bus.Event{Type: bus.EventProbeFinished, Section: node.SectionName(), Data: online})
			fmt.Printf("%s\t%s:%s\t%s\n", node.SectionName(), host, port, status)
		}
		return nil
	},
}

func init() {
	nodesCmd.Flags().BoolP("check", "c", false, "Probe each node's reachability")
}

var checkCmd = &cobra.Command{
	Use:   "check <section>",
	Short: "Probe whether a remote node is reachable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		doc, err := loadDocument()
		if err != nil {
			return err
		}

		nodes, err := doc.RemoteNodes()
		if err != nil {
			return err
		}

		for _, node := range nodes {
			if node.SectionName() != name {
				continue
			}

			node.SetProbeTimeout(cfg.Probe.Timeout())
			online, err := node.IsOnline()
			if err != nil {
				return err
			}
			bus.Publish(bus.Event{Type: bus.EventProbeFinished, Section: name, Data: online})

			if online {
				fmt.Printf("%s is online\n", name)
				return nil
			}
			if cause := node.LastProbeError(); cause != nil {
				fmt.Printf("%s is offline (%v)\n", name, cause)
			} else {
				fmt.Printf("%s is offline\n", name)
			}
			return nil
		}

		return fmt.Errorf("no TYPE=Net section named %q", name)
	},
}

var addNodeCmd = &cobra.Command{
	Use:   "add-node <section>",
	Short: "Add a TYPE=Net section and write the document back",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetString("port")
		authKey, _ := cmd.Flags().GetString("auth-key")
		codec, _ := cmd.Flags().GetString("codec")
		out, _ := cmd.Flags().GetString("out")
		appendMode, _ := cmd.Flags().GetBool("append")

		doc, err := loadDocument()
		if err != nil {
			return err
		}

		node, err := svxconf.NewNetNode(name, nil)
		if err != nil {
			return err
		}
		if err := node.Set("HOST", host); err != nil {
			return err
		}
		if err := node.Set("TCP_PORT", port); err != nil {
			return err
		}
		if authKey != "" {
			if err := node.Set("AUTH_KEY", authKey); err != nil {
				return err
			}
		}
		if codec != "" {
			if err := node.Set("CODEC", codec); err != nil {
				return err
			}
		}

		if err := doc.AddSection(node); err != nil {
			return err
		}
		bus.Publish(bus.Event{Type: bus.EventSectionAdded, Section: name})

		target := out
		if target == "" {
			target = cfg.General.SvxlinkConf
		}

		mode := svxconf.ModeTruncate
		if appendMode {
			mode = svxconf.ModeAppend
		}

		// Rewriting the live file: keep a copy first
		if target == cfg.General.SvxlinkConf {
			b, err := backupMgr.Create(target, fmt.Sprintf("before adding node %s", name))
			if err != nil {
				return fmt.Errorf("backup failed, not writing: %w", err)
			}
			bus.Publish(bus.Event{Type: bus.EventBackupCreated, Data: b.ID})
		}

		if err := doc.Write(target, mode); err != nil {
			return err
		}
		bus.Publish(bus.Event{Type: bus.EventDocumentWritten, Section: name, Data: target})

		fmt.Printf("Added node %s (%s:%s) to %s\n", name, host, port, target)
		return nil
	},
}

func init() {
	addNodeCmd.Flags().String("host", "", "Remote host (required)")
	addNodeCmd.Flags().String("port", "", "Remote TCP port (required)")
	addNodeCmd.Flags().String("auth-key", "", "Authentication key")
	addNodeCmd.Flags().String("codec", "", "Audio codec")
	addNodeCmd.Flags().String("out", "", "Write to this file instead of the managed config")
	addNodeCmd.Flags().Bool("append", false, "Append the serialized document instead of replacing the file")
	_ = addNodeCmd.MarkFlagRequired("host")
	_ = addNodeCmd.MarkFlagRequired("port")
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage configuration backups",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a backup of the managed config",
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")
		if message == "" {
			message = "Manual backup"
		}

		b, err := backupMgr.Create(cfg.General.SvxlinkConf, message)
		if err != nil {
			return err
		}
		bus.Publish(bus.Event{Type: bus.EventBackupCreated, Data: b.ID})

		fmt.Printf("Created backup %s\n", b.ID)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		backups, err := backupMgr.List()
		if err != nil {
			return err
		}

		if len(backups) == 0 {
			fmt.Println("No backups")
			return nil
		}

		for _, b := range backups {
			fmt.Printf("%s\t%s\t%s\n", b.ID, b.Metadata.Timestamp.Format("2006-01-02 15:04:05"), b.Metadata.Message)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a backup over the managed config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		if err := backupMgr.Restore(id, cfg.General.SvxlinkConf); err != nil {
			return err
		}
		bus.Publish(bus.Event{Type: bus.EventBackupRestored, Data: id})

		fmt.Printf("Restored backup %s to %s\n", id, cfg.General.SvxlinkConf)
		return nil
	},
}

func init() {
	backupCreateCmd.Flags().StringP("message", "m", "", "Backup message")
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetFullVersion())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		return startAPIServer(port, cfg, backupMgr)
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Listen port (default from settings file)")
}
