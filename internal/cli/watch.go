package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/materialvault/materialvault/internal/events"
	"github.com/materialvault/materialvault/internal/logging"
	"github.com/materialvault/materialvault/internal/metrics"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the content directory and print change events",
	Long: `Watch keeps the index live: the content directory is polled for asset
changes, refresh and thumbnail events are printed as they happen, and
Prometheus metrics are served for scraping.`,
	Run: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := initContext(ctx)
	defer c.Close()

	ch := c.Manager.Events().Subscribe()
	defer c.Manager.Events().Unsubscribe(ch)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: c.Config.MetricsAddr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("metrics listening", zap.String("addr", c.Config.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		printEvents(ctx, ch)
		return nil
	})

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", c.Config.ContentDir)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		exitError("%v", err)
	}
}

func printEvents(ctx context.Context, ch <-chan events.Event) {
	cyan := color.New(color.FgCyan)
	magenta := color.New(color.FgMagenta)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			stamp := time.Unix(ev.Timestamp, 0).Format("15:04:05")
			switch ev.Type {
			case events.EventRefresh:
				if ev.Path != "" {
					cyan.Printf("%s refresh %s\n", stamp, ev.Path)
				} else {
					cyan.Printf("%s refresh\n", stamp)
				}
			case events.EventThumbnail:
				magenta.Printf("%s thumbnail %s @%d\n", stamp, ev.Path, ev.Size)
			case events.EventSettings:
				fmt.Printf("%s settings changed\n", stamp)
			}
		}
	}
}
