// cmd/tools/registry-updater/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"professionals-admin/pkg/registry"

	bulkupsertprofessionals "professionals-admin/internal/workers/professionals/bulk-upsert-professionals"
	createprofessional "professionals-admin/internal/workers/professionals/create-professional"
	listprofessionals "professionals-admin/internal/workers/professionals/list-professionals"
	uploadresume "professionals-admin/internal/workers/professionals/upload-resume"
)

// servedTaskTypes are the job types cmd/worker-manager starts a worker for.
var servedTaskTypes = []string{
	listprofessionals.TaskType,
	createprofessional.TaskType,
	bulkupsertprofessionals.TaskType,
	uploadresume.TaskType,
}

type tool struct {
	path   string
	out    io.Writer
	now    func() time.Time
	served []string
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	t := &tool{
		path:   registry.DefaultPath,
		out:    os.Stdout,
		now:    time.Now,
		served: servedTaskTypes,
	}
	if err := t.run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (t *tool) run(command string, args []string) error {
	switch command {
	case "list":
		return t.list(args)
	case "add":
		return t.add(args)
	case "update":
		return t.update(args)
	case "validate":
		return t.validate(args)
	case "help":
		printUsage(t.out)
		return nil
	default:
		printUsage(t.out)
		return fmt.Errorf("unknown command %q", command)
	}
}

const usage = `Usage: registry-updater <command> [flags]

Commands:
  list      Show the registered activities and whether a worker serves them
  add       Add a new activity to the registry
  update    Update a field of an existing activity
  validate  Check schemas, timeouts and worker coverage
  help      Show this help message

Every command takes -path (default ` + registry.DefaultPath + `).

Examples:
  registry-updater list
  registry-updater add -id archive-professional -displayName "Archive Professional" -description "Archives a professional record" -input-schema archive.input.json
  registry-updater update -id upload-resume -field timeout -value 90s
  registry-updater validate -path pkg/registry/activities.json

Use 'registry-updater <command> -h' for more information about a command.
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}
