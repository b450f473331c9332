package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rvtr/libWiiPy/pkg"
)

var (
	keysPath string
	outDir   string
	verbose  bool

	log *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:           "wadkit",
	Short:         "Inspect WAD files and recover title keys",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := zap.NewDevelopmentConfig()
		if !verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
		logger, err := cfg.Build()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		log = logger.Sugar()
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print the ticket fields of a WAD or raw ticket file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := readTicket(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Issuer:         %s\n", strings.TrimRight(t.GetIssuer(), "\x00"))
		fmt.Printf("Title ID:       %s\n", t.GetTitleID())
		fmt.Printf("Ticket ID:      %s\n", t.GetTicketID())
		fmt.Printf("Console ID:     %d\n", t.GetConsoleID())
		fmt.Printf("Title version:  %d\n", t.GetTitleVersion())
		fmt.Printf("Format version: %d\n", t.FormatVersion)
		fmt.Printf("Common key:     %s\n", t.GetCommonKeyType())
		fmt.Printf("Export allowed: %d\n", t.ExportAllowed)

		for i, limit := range t.GetTitleLimits() {
			if limit.Type == pkg.LimitTypeNone || limit.Type == pkg.LimitTypeNoneAlt {
				continue
			}
			switch limit.Type {
			case pkg.LimitTypeTime:
				fmt.Printf("Play limit %d:   %d minutes\n", i, limit.MaximumUsage)
			case pkg.LimitTypeLaunchCount:
				fmt.Printf("Play limit %d:   %d launches\n", i, limit.MaximumUsage)
			default:
				fmt.Printf("Play limit %d:   type %d, maximum %d\n", i, uint32(limit.Type), limit.MaximumUsage)
			}
		}

		return nil
	},
}

var titlekeyCmd = &cobra.Command{
	Use:   "titlekey <file>",
	Short: "Decrypt and print the title key of a WAD or raw ticket file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := pkg.LoadKeyTable(keysPath)
		if err != nil {
			return err
		}

		t, err := readTicket(args[0])
		if err != nil {
			return err
		}

		log.Debugw("resolving title key",
			"title_id", t.GetTitleID(),
			"common_key", t.GetCommonKeyType())

		titleKey, err := t.GetTitleKey(table)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", hex.EncodeToString(titleKey))
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <file.wad>",
	Short: "Write the WAD sections out as separate files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		w, err := pkg.ParseWAD(data)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(outDir, 0755); err != nil {
			return err
		}

		sections := []struct {
			name string
			get  func() ([]byte, error)
		}{
			{"cert.bin", w.GetCertData},
			{"ticket.tik", w.GetTicketData},
			{"tmd.bin", w.GetTMDData},
			{"meta.bin", w.GetMetaData},
			{"content.bin", w.GetContentData},
		}

		for _, s := range sections {
			section, err := s.get()
			if err != nil {
				return err
			}
			if len(section) == 0 {
				log.Debugw("skipping empty section", "name", s.name)
				continue
			}
			name := filepath.Join(outDir, s.name)
			if err := os.WriteFile(name, section, 0644); err != nil {
				return err
			}
			log.Infow("wrote section", "name", name, "size", len(section))
		}

		return nil
	},
}

// readTicket accepts either a WAD (detected by its header) or a raw ticket.
func readTicket(name string) (*pkg.Ticket, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	if w, err := pkg.ParseWAD(data); err == nil {
		return w.GetTicket()
	}
	return pkg.ParseTicket(data)
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	titlekeyCmd.Flags().StringVarP(&keysPath, "keys", "k", "keys.yaml", "YAML file with the common keys")
	extractCmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory for the extracted sections")
	rootCmd.AddCommand(infoCmd, titlekeyCmd, extractCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
