// Command gridline runs the spreadsheet evaluation core as a standalone
// server: it loads or creates a .grd document, optionally serves a
// liveview WebSocket endpoint and publishes a changefeed, and saves the
// document on exit.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"gridline/changefeed"
	"gridline/document"
	"gridline/engine"
	"gridline/liveview"
)

func main() {
	var (
		filePath       = flag.StringP("file", "f", "", "path to a .grd document to load (created on save if missing)")
		functionsPath  = flag.String("functions", "", "path to a karl functions file to load on startup")
		listenAddr     = flag.String("listen", "", "address to serve the liveview WebSocket on, e.g. :8080 (disabled if empty)")
		changefeedPort = flag.Int("changefeed-port", 0, "port to publish the ZeroMQ changefeed on (disabled if 0)")
		logLevel       = flag.String("log-level", "info", "logrus level: trace, debug, info, warn, error")
	)
	flag.Parse()

	log := logrus.New()
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithError(err).Warn("unrecognized log level, defaulting to info")
	}

	doc, err := openDocument(*filePath, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open document")
	}

	if *functionsPath != "" {
		source, err := os.ReadFile(*functionsPath)
		if err != nil {
			log.WithError(err).Fatal("failed to read functions file")
		}
		if err := doc.LoadFunctions(*functionsPath, string(source)); err != nil {
			log.WithError(err).Fatal("failed to load functions file")
		}
	}

	if *changefeedPort != 0 {
		pub, err := changefeed.NewPublisher("tcp", "0.0.0.0", *changefeedPort)
		if err != nil {
			log.WithError(err).Fatal("failed to start changefeed publisher")
		}
		defer pub.Close()
		doc.OnChange(func(ref engine.CellRef, display string) {
			if err := pub.Publish(changefeed.ChangeEvent{Ref: ref.String(), Display: display, Kind: "set"}); err != nil {
				log.WithError(err).Warn("changefeed publish failed")
			}
		})
		log.WithField("port", *changefeedPort).Info("changefeed publisher listening")
	}

	if *listenAddr != "" {
		server := liveview.NewServer(doc, log)
		doc.OnChange(func(engine.CellRef, string) { server.BroadcastSnapshot() })
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", server.HandleWebSocket)
		go func() {
			log.WithField("addr", *listenAddr).Info("liveview server listening")
			if err := http.ListenAndServe(*listenAddr, mux); err != nil {
				log.WithError(err).Fatal("liveview server exited")
			}
		}()
	}

	waitForShutdown(log)

	if doc.FilePath() != "" {
		if err := doc.SaveFile(""); err != nil {
			log.WithError(err).Error("failed to save document on exit")
		}
	}
}

func openDocument(path string, log *logrus.Logger) (*document.Document, error) {
	if path == "" {
		return document.New(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.WithField("path", path).Info("document does not exist yet, starting empty")
		doc := document.New()
		doc.SetFilePath(path)
		return doc, nil
	}
	return document.LoadFile(path)
}

func waitForShutdown(log *logrus.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
}
