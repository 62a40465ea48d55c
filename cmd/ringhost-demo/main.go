// Command ringhost-demo is a small CLI harness around ringhost.Host: load a
// shared library, invoke it under one of the four call disciplines, and
// optionally relay a stream over a WebSocket connection so a browser client
// can watch frames arrive in real time.
package main

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/streamspace/ringhost"
	"github.com/streamspace/ringhost/internal/logging"
)

var (
	logLevel  string
	prettyLog bool
	host      *ringhost.Host
)

func main() {
	root := &cobra.Command{
		Use:   "ringhost-demo",
		Short: "Load and exercise ring-ABI plugins from the command line",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts := []ringhost.Option{ringhost.WithLogLevel(logLevel)}
			if prettyLog {
				opts = append(opts, ringhost.WithPrettyLogging())
			}
			host = ringhost.New(opts...)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logger level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&prettyLog, "pretty", false, "use human-readable console logging instead of JSON")

	root.AddCommand(loadCmd(), callCmd(), callFastCmd(), fireCmd(), streamCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load [path]",
		Short: "Load a plugin shared library and print its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := host.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("loaded %s v%s from %s\n", p.Name, p.Version, p.Path)
			return nil
		},
	}
}

func payloadFromHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

func callCmd() *cobra.Command {
	var path, payloadHex string
	cmd := &cobra.Command{
		Use:   "call [plugin] [entry]",
		Short: "Request/response call (async-safe discipline)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path != "" {
				if _, err := host.Load(path); err != nil {
					return err
				}
			}
			payload, err := payloadFromHex(payloadHex)
			if err != nil {
				return err
			}
			st, resp, err := host.CallResponse(args[0], args[1], payload)
			if err != nil {
				return err
			}
			fmt.Printf("status=%s response=%s\n", st, hex.EncodeToString(resp))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "load", "", "shared library path to load first")
	cmd.Flags().StringVar(&payloadHex, "payload", "", "hex-encoded request payload")
	return cmd
}

func callFastCmd() *cobra.Command {
	var path, payloadHex string
	cmd := &cobra.Command{
		Use:   "call-fast [plugin] [entry]",
		Short: "Ultra-fast synchronous call (same-goroutine discipline)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path != "" {
				if _, err := host.Load(path); err != nil {
					return err
				}
			}
			payload, err := payloadFromHex(payloadHex)
			if err != nil {
				return err
			}
			st, resp, err := host.CallResponseFast(args[0], args[1], payload)
			if err != nil {
				return err
			}
			fmt.Printf("status=%s response=%s\n", st, hex.EncodeToString(resp))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "load", "", "shared library path to load first")
	cmd.Flags().StringVar(&payloadHex, "payload", "", "hex-encoded request payload")
	return cmd
}

func fireCmd() *cobra.Command {
	var path, payloadHex string
	cmd := &cobra.Command{
		Use:   "fire [plugin] [entry]",
		Short: "Fire-and-forget call",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path != "" {
				if _, err := host.Load(path); err != nil {
					return err
				}
			}
			payload, err := payloadFromHex(payloadHex)
			if err != nil {
				return err
			}
			st, err := host.Call(args[0], args[1], payload)
			if err != nil {
				return err
			}
			fmt.Printf("status=%s\n", st)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "load", "", "shared library path to load first")
	cmd.Flags().StringVar(&payloadHex, "payload", "", "hex-encoded request payload")
	return cmd
}

func streamCmd() *cobra.Command {
	var path, payloadHex string
	cmd := &cobra.Command{
		Use:   "stream [plugin] [entry]",
		Short: "Open a bidirectional stream and print every frame received",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path != "" {
				if _, err := host.Load(path); err != nil {
					return err
				}
			}
			payload, err := payloadFromHex(payloadHex)
			if err != nil {
				return err
			}
			s, err := host.CallStream(args[0], args[1], payload)
			if err != nil {
				return err
			}
			defer s.Close()
			for {
				st, frame, ok := s.Read()
				if !ok {
					return nil
				}
				fmt.Printf("frame status=%s payload=%s\n", st, hex.EncodeToString(frame))
			}
		},
	}
	cmd.Flags().StringVar(&path, "load", "", "shared library path to load first")
	cmd.Flags().StringVar(&payloadHex, "payload", "", "hex-encoded request payload")
	return cmd
}

// serveCmd starts a tiny WebSocket relay: each connection opens one stream
// against the named plugin/entry and forwards frames to the browser as they
// arrive, a convenient way to watch a streaming plugin from a dev console.
func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [plugin] [entry]",
		Short: "Relay a plugin's stream to WebSocket clients over HTTP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			upgrader := websocket.Upgrader{
				ReadBufferSize:  1024,
				WriteBufferSize: 1024,
				CheckOrigin:     func(r *http.Request) bool { return true },
			}
			log := logging.Component("demo-serve")

			http.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
				conn, err := upgrader.Upgrade(w, r, nil)
				if err != nil {
					log.Error().Err(err).Msg("websocket upgrade failed")
					return
				}
				defer conn.Close()

				s, err := host.CallStream(args[0], args[1], nil)
				if err != nil {
					log.Error().Err(err).Msg("call_stream failed")
					return
				}
				defer s.Close()

				for {
					st, payload, ok := s.Read()
					if !ok {
						return
					}
					if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
						log.Warn().Err(err).Msg("client disconnected")
						return
					}
					log.Debug().Str("status", st.String()).Int("bytes", len(payload)).Msg("frame relayed")
				}
			})

			log.Info().Str("addr", addr).Msg("demo relay listening")
			return http.ListenAndServe(addr, nil)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8088", "listen address")
	return cmd
}
