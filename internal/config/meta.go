package config

import (
	"reflect"
	"strings"
)

// GetSettingsFilePath returns the path to the settings file
func GetSettingsFilePath() string {
	return GetSettingsPath()
}

// GetSettingsExample uses reflection to generate example settings
// This automatically stays in sync when new fields are added to Settings
func GetSettingsExample() map[string]any {
	return exampleForStruct(reflect.TypeOf(Settings{}))
}

func exampleForStruct(t reflect.Type) map[string]any {
	example := make(map[string]any)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		jsonTag := field.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}

		// Extract the JSON field name (before comma)
		jsonName := strings.Split(jsonTag, ",")[0]
		example[jsonName] = generateExampleValue(field.Type, jsonName)
	}

	return example
}

// generateExampleValue creates appropriate example values based on type and field name
func generateExampleValue(t reflect.Type, fieldName string) any {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		return exampleForStruct(t)
	case reflect.Bool:
		switch fieldName {
		case "safety_checkpoint_on_revert", "debug":
			return true
		}
		return false
	case reflect.Int:
		switch fieldName {
		case "chunk_size":
			return 1000
		case "max_log_files":
			return 1000
		case "ttl_seconds":
			return 600
		}
		return 10
	case reflect.String:
		switch fieldName {
		case "backend":
			return CacheBackendMemory
		case "condition":
			return "melanoma"
		case "db_path":
			return "~/.cytodash/cell-count.db"
		case "metrics_file":
			return "~/.cytodash/metrics.prom"
		case "redis_addr":
			return DefaultRedisAddr
		case "s3_bucket":
			return "cytodash-checkpoints"
		case "s3_endpoint":
			return "http://localhost:9000"
		case "s3_prefix":
			return "checkpoints/"
		case "s3_region":
			return "eu-west-1"
		case "sample_type":
			return "PBMC"
		case "treatment":
			return "tr1"
		}
		return "example"
	}

	return nil
}
