package display

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/graphminer/errors"
)

// ShouldOutputJSON reports whether a command should print JSON instead of tables.
// A command-local --json flag wins over the global one; GRAPHMINER_JSON=1
// turns JSON on when no flag was given.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return envJSON()
	}

	if cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}

	return envJSON()
}

func envJSON() bool {
	v := os.Getenv("GRAPHMINER_JSON")
	return v == "1" || v == "true"
}

// OutputJSON marshals and prints JSON using MarshalJSON
func OutputJSON(v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	fmt.Println(string(data))
	return nil
}
