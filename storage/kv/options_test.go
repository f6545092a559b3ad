package kv_test

import (
	"testing"

	"github.com/jrife/stash/storage/kv"
)

func TestOptionsString(t *testing.T) {
	testCases := map[string]struct {
		options      kv.Options
		defaultValue string
		result       string
		err          bool
	}{
		"present":    {options: kv.Options{"path": "/var/data"}, result: "/var/data"},
		"absent":     {options: kv.Options{}, defaultValue: ".", result: "."},
		"wrong type": {options: kv.Options{"path": 5}, err: true},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			result, err := testCase.options.String("path", testCase.defaultValue)

			if testCase.err {
				if err == nil {
					t.Fatalf("expected err to not be nil")
				}

				return
			}

			if err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}

			if result != testCase.result {
				t.Fatalf("expected result to be %s, got %s", testCase.result, result)
			}
		})
	}
}

func TestOptionsAddress(t *testing.T) {
	testCases := map[string]struct {
		options kv.Options
		result  string
		err     bool
	}{
		"string":     {options: kv.Options{"port": "6379"}, result: "6379"},
		"int":        {options: kv.Options{"port": 6379}, result: "6379"},
		"absent":     {options: kv.Options{}, err: true},
		"empty":      {options: kv.Options{"port": ""}, err: true},
		"wrong type": {options: kv.Options{"port": 6379.0}, err: true},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			result, err := testCase.options.Address("port")

			if testCase.err {
				if err == nil {
					t.Fatalf("expected err to not be nil")
				}

				return
			}

			if err != nil {
				t.Fatalf("expected err to be nil, got %#v", err)
			}

			if result != testCase.result {
				t.Fatalf("expected result to be %s, got %s", testCase.result, result)
			}
		})
	}
}
