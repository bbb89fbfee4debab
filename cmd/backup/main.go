package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/ukydev/fleet-ledger/internal/backup"
	"github.com/ukydev/fleet-ledger/internal/config"
	"github.com/ukydev/fleet-ledger/internal/db"
	"github.com/ukydev/fleet-ledger/internal/store"
)

// service is the part of backup.Service the commands use.
type service interface {
	Export(ctx context.Context, userID string) (backup.Snapshot, error)
	Import(ctx context.Context, userID string, data []byte) (backup.ImportResult, error)
}

// opener connects to the stores and returns a service plus its cleanup.
type opener func(ctx context.Context) (service, func(), error)

func openStores(ctx context.Context) (service, func(), error) {
	cfg := config.Load()
	cfg.ConfigureLogging()

	client, err := db.ConnectMongo(ctx, cfg.MongoURI, 10*time.Second)
	if err != nil {
		return nil, nil, err
	}
	local, err := store.Open(cfg.LocalDBPath)
	if err != nil {
		client.Disconnect(context.Background())
		return nil, nil, err
	}
	tripColl := &db.MongoTripCollection{Collection: client.Database(cfg.MongoDatabase).Collection(db.TripsCollection)}

	cleanup := func() {
		local.Close()
		client.Disconnect(context.Background())
	}
	return backup.NewService(local, tripColl), cleanup, nil
}

func newRootCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "backup",
		Short:        "exports and imports the full state of a profile",
		SilenceUsage: true,
	}
	cmd.AddCommand(newExportCmd(open))
	cmd.AddCommand(newImportCmd(open))
	return cmd
}

func newExportCmd(open opener) *cobra.Command {
	var userID, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "writes the state of a profile as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			snap, err := svc.Export(cmd.Context(), userID)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(snap); err != nil {
				return err
			}
			log.WithFields(log.Fields{"user_id": userID, "trips": len(snap.Trips), "out": out}).Info("Backup exported")
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "profile id")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newImportCmd(open opener) *cobra.Command {
	var userID, in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "replaces the state of a profile with an export",
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if in == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(in)
			}
			if err != nil {
				return err
			}

			svc, cleanup, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Import(cmd.Context(), userID, data)
			if err != nil {
				return err
			}
			cmd.Printf("imported %d trips, %d expenses, %d tires, %d retired tires\n",
				result.Trips, result.Expenses, result.Tires, result.RetiredTires)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "profile id")
	cmd.Flags().StringVarP(&in, "in", "i", "", "input file, - for stdin")
	cmd.MarkFlagRequired("user")
	cmd.MarkFlagRequired("in")
	return cmd
}

func main() {
	if err := newRootCmd(openStores).ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("Backup command failed")
		os.Exit(1)
	}
}
