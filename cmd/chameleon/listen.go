package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/valyala/fasthttp"
)

// echoReply is the JSON body returned by the echo server. Headers are kept
// as an ordered pair list because the order they arrived in is the point.
type echoReply struct {
	Method  string      `json:"method"`
	Path    string      `json:"path"`
	Headers [][2]string `json:"headers"`
	Body    string      `json:"body,omitempty"`
}

// runEchoServer starts a local server that reflects every request back as
// JSON and logs the header order it observed. Point a session at it to see
// exactly what a profile puts on the wire.
func runEchoServer(port string, logger *log.Logger) {
	logger.SetLevel(log.InfoLevel)

	addr := getEnv("CHAMELEON_BIND", "localhost") + ":" + port

	bannerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(primaryColor).
		MarginBottom(1)

	infoBoxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(1, 2).
		MarginBottom(1)

	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)

	fmt.Println(bannerStyle.Render("chameleon echo server"))
	fmt.Println(infoBoxStyle.Render(fmt.Sprintf(
		"%s http://%s\n%s chameleon -profile chrome_124 http://%s",
		mutedStyle.Render("Listen:"),
		addr,
		mutedStyle.Render("Try:"),
		addr,
	)))

	server := &fasthttp.Server{
		Handler:                      makeEchoHandler(logger),
		DisablePreParseMultipartForm: true,
		ReadTimeout:                  30 * time.Second,
		WriteTimeout:                 30 * time.Second,
		IdleTimeout:                  60 * time.Second,
	}

	setupGracefulShutdown(server, logger)

	logger.Info("Starting echo server", "addr", addr)
	if err := server.ListenAndServe(addr); err != nil {
		logger.Fatal("Server failed to start", "error", err)
	}
}

func makeEchoHandler(logger *log.Logger) fasthttp.RequestHandler {
	headerStyle := lipgloss.NewStyle().Foreground(accentColor)
	valueStyle := lipgloss.NewStyle().Foreground(mutedColor)

	return func(ctx *fasthttp.RequestCtx) {
		reply := echoReply{
			Method: string(ctx.Method()),
			Path:   string(ctx.Path()),
			Body:   string(ctx.PostBody()),
		}
		ctx.Request.Header.VisitAll(func(key, value []byte) {
			reply.Headers = append(reply.Headers, [2]string{string(key), string(value)})
		})

		logger.Info("Request received",
			"method", reply.Method,
			"path", reply.Path,
			"headers", len(reply.Headers),
		)
		for _, h := range reply.Headers {
			fmt.Printf("  %s %s\n", headerStyle.Render(h[0]+":"), valueStyle.Render(h[1]))
		}

		ctx.SetContentType("application/json")
		body, err := json.MarshalIndent(reply, "", "  ")
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			return
		}
		ctx.SetBody(body)
	}
}

func setupGracefulShutdown(server *fasthttp.Server, logger *log.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Shutting down server")
		if err := server.Shutdown(); err != nil {
			logger.Error("Error during shutdown", "error", err)
		}
		logger.Info("Server stopped")
		os.Exit(0)
	}()
}
