package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"docfresh/schemas"
)

// JSON validates a JSON file against an embedded schema.
func JSON(path string, schemaName string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	schema, err := schemas.Compile(schemaName)
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(bytes.TrimSpace(data), &instance); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%s invalid: %w", path, err)
	}
	return nil
}
