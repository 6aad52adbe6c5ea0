package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/foodwaste-zero/internal/config"
	"github.com/jrsteele09/foodwaste-zero/internal/fakeapi"
	"github.com/jrsteele09/foodwaste-zero/internal/logging"
	"github.com/jrsteele09/foodwaste-zero/internal/utils"
	"github.com/jrsteele09/foodwaste-zero/inventory"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	demoEmail    = "demo@foodwaste.zero"
	demoPassword = "demo"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetLogLevel(), c.GetEnv())
	displayAppname(c.GetAppName())

	api := fakeapi.New(c.GetSigningSecret(),
		fakeapi.WithEnv(c.GetEnv()),
		fakeapi.WithTokenExpiry(c.GetTokenExpiry()),
	)
	if err := seed(api); err != nil {
		return errors.Wrap(err, "seeding demo data")
	}

	server := &http.Server{Addr: c.GetPort(), Handler: api, ReadHeaderTimeout: 10 * time.Second}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(server) }()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

// seed registers a demo household whose inventory covers every risk bucket.
func seed(api *fakeapi.Server) error {
	if _, err := api.AddUser(fakeapi.NewUser{Email: demoEmail, Password: demoPassword, FullName: "Demo Household", HouseholdSize: 3}); err != nil {
		return err
	}
	products := []inventory.Product{
		{Name: "Yoghurt", Category: utils.Ptr("Dairy"), Quantity: 2, DaysLeft: -1},
		{Name: "Milk", Category: utils.Ptr("Dairy"), Quantity: 1, DaysLeft: 0},
		{Name: "Spinach", Category: utils.Ptr("Vegetables"), Quantity: 1, DaysLeft: 1},
		{Name: "Chicken", Category: utils.Ptr("Meat"), Quantity: 1, DaysLeft: 3},
		{Name: "Rice", Quantity: 1, DaysLeft: 120},
	}
	for _, p := range products {
		if err := api.AddProduct(demoEmail, p); err != nil {
			return err
		}
	}
	history := []inventory.HistoryEntry{
		{Action: inventory.ActionConsumed, ProductName: utils.Ptr("Bread"), Amount: 1},
		{Action: inventory.ActionWasted, ProductName: utils.Ptr("Lettuce"), Amount: 1},
	}
	for _, h := range history {
		if err := api.AddHistory(demoEmail, h); err != nil {
			return err
		}
	}
	log.Info().Str("email", demoEmail).Msg("Seeded demo account")
	return nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
