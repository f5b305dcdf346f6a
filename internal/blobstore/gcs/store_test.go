package gcs

import (
	"context"
	"testing"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"", "sms_expenses", "sms_expenses.json"},
		{"smsspend", "sms_expenses", "smsspend/sms_expenses.json"},
		{"smsspend/", "sms_expenses", "smsspend/sms_expenses.json"},
		{"a/b", "k", "a/b/k.json"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"|"+tt.key, func(t *testing.T) {
			if got := objectName(tt.prefix, tt.key); got != tt.want {
				t.Errorf("objectName(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNewStore_RequiresBucket(t *testing.T) {
	if _, err := NewStore(context.Background(), Config{}); err == nil {
		t.Error("Expected error for missing bucket")
	}
}
