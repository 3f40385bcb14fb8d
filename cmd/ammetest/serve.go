package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/electroqa/ammetest"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the emulated device endpoints",
	Long: `The serve subcommand starts one TCP endpoint per configured
ammeter, each bound to its own port, and runs them until the
process is signaled to stop.

Each endpoint accepts one connection at a time, reads the
device's fixed command, replies with a single fabricated
reading and closes the connection.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		for kind, dev := range cfg.Ammeters {
			device, err := ammetest.NewDevice(kind, nil)
			if err != nil {
				log.Fatal(err)
			}
			srv := &ammetest.Server{
				Device:     device,
				ListenAddr: fmt.Sprintf("localhost:%d", dev.Port),
			}
			if err := srv.Listen(); err != nil {
				log.Fatal(err)
			}
			log.Printf("%s emulator is running on %s", kind, srv.Addr())

			go func(kind string, srv *ammetest.Server) {
				if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
					log.Printf("%s emulator stopped: %v", kind, err)
				}
			}(kind, srv)
		}

		<-ctx.Done()
		log.Println("shutting down")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
