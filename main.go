// Command quizroom starts the quiz game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing the REST API,
//     the WebSocket quiz protocol, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server so an agent can host or
//     play games directly
//
// Flags control host/port, the question bank directory, an optional
// idle-game TTL, debug logging, and version output.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/quizroom/quizroom/api"
	"github.com/quizroom/quizroom/game/bank"
	"github.com/quizroom/quizroom/game/service"
	"github.com/quizroom/quizroom/game/session"
	"github.com/quizroom/quizroom/transport/mcp"
	"github.com/quizroom/quizroom/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Quizroom Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port    = flag.Int("port", 8080, "HTTP server port")
	host    = flag.String("host", "localhost", "HTTP server host")
	bankDir = flag.String("bank-dir", getBankDirDefault(), "Directory containing question set files")
	gameTTL = flag.Duration("game-ttl", 0, "Remove games idle longer than this (0 disables reaping)")
	debug   = flag.Bool("debug", false, "Enable debug logging")
	version = flag.Bool("version", false, "Show version information")
)

// getBankDirDefault returns the default question bank directory.
// It first honors the BANK_DIR environment variable, then falls back to "questions".
func getBankDirDefault() string {
	if dir := os.Getenv("BANK_DIR"); dir != "" {
		return dir
	}
	return "questions"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                       # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090            # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -game-ttl 24h         # Reap games idle for a day\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp             # Run MCP stdio server\n", os.Args[0])
	}
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	// Setup logging
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}

	// Determine mode from command
	args := flag.Args()
	mode := "server" // default
	if len(args) > 0 {
		mode = args[0]
	}

	log.Printf("Starting %s v%s (mode: %s)", AppName, Version, mode)

	quizService, hub := initializeServices()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		runStdioMCP(quizService)

	case "server", "http":
		runHTTPServer(quizService, hub)

	default:
		log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// initializeServices wires the registry, question bank, broadcast hub,
// and the quiz service. The bank directory is optional; without it only
// inline question uploads work.
func initializeServices() (service.QuizService, *websocket.Hub) {
	var bankMgr *bank.Manager
	if _, err := os.Stat(*bankDir); err == nil {
		mgr, err := bank.NewManager(*bankDir)
		if err != nil {
			log.Fatalf("Failed to load question bank from %s: %v", *bankDir, err)
		}
		log.Printf("Loaded %d question sets from %s", mgr.Count(), *bankDir)
		bankMgr = mgr
	} else {
		log.Printf("No question bank directory at %s, bank-based games disabled", *bankDir)
	}

	registry := session.NewRegistry()

	hub := websocket.NewHub()
	go hub.Run()

	quizService := service.NewQuizService(registry, bankMgr, hub)

	if *gameTTL > 0 {
		go gameReaperRoutine(registry, *gameTTL)
	}

	return quizService, hub
}

// gameReaperRoutine periodically removes games that have been idle
// longer than the retention window.
func gameReaperRoutine(registry *session.Registry, ttl time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		removed := registry.CleanupIdle(ttl)
		if removed > 0 {
			log.Printf("Reaped %d idle games", removed)
		}
	}
}

// runHTTPServer starts the HTTP server with the REST API, the WebSocket
// quiz protocol, and an /mcp endpoint.
func runHTTPServer(quizService service.QuizService, hub *websocket.Hub) {
	protocol := websocket.NewProtocolHandler(quizService, hub)
	apiServer := api.NewServer(quizService, protocol)

	addr := fmt.Sprintf("%s:%d", *host, *port)

	mcpSrv := mcp.NewServer(quizService)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpSrv.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sig := <-stop
	log.Printf("Received signal: %v. Shutting down...", sig)

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runStdioMCP runs the MCP stdio server (blocking). Tool calls hit the
// quiz service directly; no HTTP server is started in this mode.
func runStdioMCP(quizService service.QuizService) {
	mcpSrv := mcp.NewServer(quizService)

	log.Println("MCP stdio server ready")

	if err := mcpserver.ServeStdio(mcpSrv.GetMCPServer()); err != nil {
		log.Fatalf("MCP stdio server error: %v", err)
	}
}
