// Package analytics reports anonymous usage events. Metrics are opt-out
// via the --disable-metrics flag; the only identifier is a random uuid
// stored under the user's home directory.
package analytics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/posthog/posthog-go"
)

const (
	TraceCommand        = "executed_trace_command"
	TraceCommandHTML    = "executed_trace_command_html_mode"
	ReportCommand       = "executed_report_command"
	WatchCommand        = "executed_watch_command"
	VersionCommand      = "executed_version_command"
	ErrorBuildingGraph  = "error_building_graph"
	ErrorRenderingGraph = "error_rendering_graph"
)

var (
	PublicKey     string
	enableMetrics bool
)

// Init toggles metric reporting for the process.
func Init(disableMetrics bool) {
	enableMetrics = !disableMetrics
}

func envFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".callpath", ".env"), nil
}

func createEnvFile() {
	envFile, err := envFilePath()
	if err != nil {
		fmt.Println("Error getting user home directory:", err)
		return
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(envFile), os.ModePerm); err != nil {
			fmt.Println("Error creating directory:", err)
			return
		}
		env := map[string]string{
			"uuid": uuid.New().String(),
		}
		if err := godotenv.Write(env, envFile); err != nil {
			fmt.Println("Error writing to .env file:", err)
		}
	}
}

// LoadEnvFile ensures the anonymous id exists and loads it into the
// environment.
func LoadEnvFile() {
	createEnvFile()
	envFile, err := envFilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(envFile)
}

// ReportEvent enqueues one usage event when metrics are enabled and a key
// was compiled in.
func ReportEvent(event string) {
	if !enableMetrics || PublicKey == "" {
		return
	}
	client, err := posthog.NewWithConfig(
		PublicKey,
		posthog.Config{
			Endpoint: "https://us.i.posthog.com",
		},
	)
	if err != nil {
		return
	}
	defer client.Close()
	_ = client.Enqueue(posthog.Capture{
		DistinctId: os.Getenv("uuid"),
		Event:      event,
	})
}
