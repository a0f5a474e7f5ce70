package jsonpath

import (
	"errors"
	"testing"
)

const userDoc = `{
	"id": "123",
	"name": "John Doe",
	"age": 30,
	"address": {
		"city": "Anytown"
	},
	"phones": [
		{"type": "home", "number": "555-1234"},
		{"type": "work", "number": "555-5678"}
	],
	"active": true,
	"scores": [10, 20, 30, 40],
	"metadata": null
}`

func TestExtract(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		expected      string
		expectedError bool
	}{
		{name: "Simple property", path: "$.name", expected: "John Doe"},
		{name: "Numeric property", path: "$.age", expected: "30"},
		{name: "Boolean property", path: "$.active", expected: "true"},
		{name: "Nested property", path: "$.address.city", expected: "Anytown"},
		{name: "Array element", path: "$.scores[1]", expected: "20"},
		{name: "Object in array", path: "$.phones[0].number", expected: "555-1234"},
		{name: "Bracket key", path: "$['address']['city']", expected: "Anytown"},
		{name: "Native gjson path", path: "phones.1.type", expected: "work"},
		{name: "Null value", path: "$.metadata", expected: "null"},
		{name: "Non-existent property", path: "$.nonexistent", expectedError: true},
		{name: "Array index out of bounds", path: "$.scores[10]", expectedError: true},
		{name: "Empty path", path: "", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Extract([]byte(userDoc), tt.path)

			if tt.expectedError && err == nil {
				t.Errorf("Expected error, got nil")
			}
			if !tt.expectedError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if !tt.expectedError && result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestLookup_Errors(t *testing.T) {
	if _, err := Lookup(nil, "$.name"); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("Expected ErrEmptyDocument, got %v", err)
	}
	if _, err := Lookup([]byte(`{"name":`), "$.name"); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("Expected ErrInvalidDocument, got %v", err)
	}
	if _, err := Lookup([]byte(userDoc), "$.missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLookup_Root(t *testing.T) {
	result, err := Lookup([]byte(`[1,2,3]`), "$")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsArray() || len(result.Array()) != 3 {
		t.Errorf("Expected root array of 3 elements, got %s", result.Raw)
	}
}

func TestExtractMultiple(t *testing.T) {
	results, err := ExtractMultiple([]byte(userDoc), map[string]string{
		"id":   "$.id",
		"city": "$.address.city",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if results["id"] != "123" || results["city"] != "Anytown" {
		t.Errorf("Unexpected results: %v", results)
	}

	results, err = ExtractMultiple([]byte(userDoc), map[string]string{
		"id":      "$.id",
		"missing": "$.nope",
	})
	if err == nil {
		t.Errorf("Expected error for missing path")
	}
	if results["id"] != "123" {
		t.Errorf("Expected partial results to be kept, got %v", results)
	}

	if _, err := ExtractMultiple([]byte(userDoc), nil); err == nil {
		t.Errorf("Expected error for empty path set")
	}
}

func TestToGjson(t *testing.T) {
	tests := map[string]string{
		"$":                   "@this",
		"$.name":              "name",
		"$.users[0].name":     "users.0.name",
		"$[2]":                "2",
		"$['a']['b']":         "a.b",
		`$["a"].b`:            "a.b",
		"$.matrix[1][0]":      "matrix.1.0",
		"already.gjson.0.key": "already.gjson.0.key",
	}

	for input, expected := range tests {
		if got := ToGjson(input); got != expected {
			t.Errorf("ToGjson(%q) = %q, want %q", input, got, expected)
		}
	}
}
