package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"voice-meditation-be/pkg/voice"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	backendURL := flag.String("backend", envOr("BACKEND_URL", "http://localhost:3000"), "backend base URL")
	realtimeURL := flag.String("realtime", os.Getenv("VAPI_REALTIME_URL"), "provider realtime websocket URL")
	token := flag.String("token", os.Getenv("ACCESS_TOKEN"), "backend access token")
	duration := flag.Int("duration", 10, "planned session length in minutes")
	flag.Parse()

	if *token == "" {
		log.Fatal("Error: access token is required (-token or ACCESS_TOKEN)")
	}
	if *realtimeURL == "" {
		log.Fatal("Error: realtime URL is required (-realtime or VAPI_REALTIME_URL)")
	}

	orch := voice.NewOrchestrator(voice.Config{
		BackendURL:  *backendURL,
		RealtimeURL: *realtimeURL,
		AuthToken:   *token,
		DurationMin: *duration,
		Handlers: voice.Handlers{
			OnStateChange: func(s voice.State) {
				log.Printf("state: %s", s)
			},
			OnSpeechStart: func() {
				log.Println("assistant speaking...")
			},
			OnSpeechEnd: func() {
				log.Println("assistant paused")
			},
			OnTranscript: func(entry voice.TranscriptEntry) {
				fmt.Printf("[%s] %s\n", entry.Role, entry.Text)
			},
			OnError: func(err error) {
				log.Printf("call error: %v", err)
			},
		},
	})

	ctx := context.Background()
	if err := orch.Start(ctx); err != nil {
		log.Fatalf("Error: failed to start call: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		orch.Wait()
		close(done)
	}()

	select {
	case <-stop:
		log.Println("Stopping call...")
		orch.Stop()
		orch.Wait()
	case <-done:
	}

	transcript := orch.Transcript()
	if len(transcript) > 0 {
		fmt.Println("--- transcript ---")
		for _, entry := range transcript {
			fmt.Printf("[%s] %s\n", entry.Role, entry.Text)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
