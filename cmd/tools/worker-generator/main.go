// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"professionals-admin/pkg/registry"
)

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., archive-professional)")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated worker")
	registryPath := flag.String("registry", registry.DefaultPath, "Path to the activity registry JSON file")
	modulePath := flag.String("module", "professionals-admin", "Go module path used in generated imports")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator --activity <id> --output <dir> [--registry <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run ./cmd/tools/worker-generator --activity archive-professional")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	var found *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *activity {
			found = &reg.Activities[i]
			break
		}
	}
	if found == nil {
		fmt.Printf("Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	data, err := newWorkerData(found, *modulePath)
	if err != nil {
		fmt.Printf("Error preparing activity %s: %v\n", found.ID, err)
		os.Exit(1)
	}

	workerDir := filepath.Join(*outputDir, data.Category, found.ID)
	files, err := render(data)
	if err != nil {
		fmt.Printf("Error rendering worker: %v\n", err)
		os.Exit(1)
	}
	if err := writeFiles(workerDir, files); err != nil {
		fmt.Printf("Error writing worker: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nWorker scaffold generated at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement the Backend in the professionals client\n")
	fmt.Printf("  2. Fill in handler_test.go\n")
	fmt.Printf("  3. Register the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  4. Add workers.%s to configs/config.yaml\n", found.TaskType)
}

func writeFiles(dir string, files map[string][]byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("- Skipped %s (exists)\n", path)
			continue
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("- Generated %s\n", path)
	}
	return nil
}
