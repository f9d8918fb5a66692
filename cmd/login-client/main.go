// Command login-client exercises the mobile login flow from a terminal:
// it prints the CAS URL to open, polls until the browser round trip
// finishes, then prints the claimed session.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yideshare/internal/casclient"
	"yideshare/internal/observability"
)

func main() {
	observability.InitLogger("info", "text")

	baseURL := os.Getenv("BRIDGE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3001"
	}

	client := casclient.NewClient(baseURL,
		casclient.WithBrowserOpener(func(url string) error {
			fmt.Printf("Open this URL in your browser to sign in:\n\n  %s\n\n", url)
			return nil
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("aborting login")
		cancel()
	}()

	slog.Info("starting login", slog.String("server", baseURL))

	session, err := client.Login(ctx)
	if err != nil {
		slog.Error("login failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Signed in as %s\n", session.User.DisplayName())
	fmt.Printf("Session token: %s\n", session.Token)

	validateCtx, validateCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer validateCancel()

	if ok, err := client.Validate(validateCtx); err != nil || !ok {
		slog.Warn("session did not validate", slog.Any("ok", ok))
		return
	}
	slog.Info("session validated")
}
