package extraction

import (
	"testing"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"whitespace", "  {\"a\":1}\n", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", `Here you go: {"a":1} hope it helps`, `{"a":1}`},
		{"array kept", `[{"a":1}]`, `[{"a":1}]`},
		{"empty", "", ""},
		{"no object", "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseResponse(t *testing.T) {
	res := ParseResponse(`{"amount": 12.5, "merchant": " Cafe ", "date": null, "category": 7}`)
	if res.Status != StatusOK {
		t.Fatalf("Status = %s, want ok", res.Status)
	}
	c := res.Candidate
	if c.Amount == nil || *c.Amount != 12.5 {
		t.Errorf("Amount = %v, want 12.5", c.Amount)
	}
	if c.Merchant == nil || *c.Merchant != "Cafe" {
		t.Errorf("Merchant = %v, want Cafe", c.Merchant)
	}
	if c.Date != nil {
		t.Errorf("Date = %v, want nil for null", *c.Date)
	}
	if c.Category != nil {
		t.Errorf("Category = %v, want nil for wrong type", *c.Category)
	}
	if missing := c.Missing(); len(missing) != 0 {
		t.Errorf("Missing() = %v, want none", missing)
	}
}

func TestParseResponse_Statuses(t *testing.T) {
	tests := []struct {
		raw  string
		want ParseStatus
	}{
		{"", StatusEmpty},
		{"   ", StatusEmpty},
		{"null", StatusMalformed},
		{"{not json}", StatusMalformed},
		{`"a string"`, StatusMalformed},
		{`{}`, StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			res := ParseResponse(tt.raw)
			if res.Status != tt.want {
				t.Errorf("ParseResponse(%q).Status = %s, want %s", tt.raw, res.Status, tt.want)
			}
			if tt.want == StatusMalformed && res.Err == nil {
				t.Error("Expected decode error for malformed response")
			}
		})
	}
}

func TestGetOptionalNumber(t *testing.T) {
	m := map[string]interface{}{
		"num":   3.25,
		"str":   "1,024.5",
		"bad":   "abc",
		"bool":  true,
		"nan":   "NaN",
		"empty": "",
	}

	if v := getOptionalNumber(m, "num"); v == nil || *v != 3.25 {
		t.Errorf("num = %v", v)
	}
	if v := getOptionalNumber(m, "str"); v == nil || *v != 1024.5 {
		t.Errorf("str = %v", v)
	}
	for _, key := range []string{"bad", "bool", "nan", "empty", "absent"} {
		if v := getOptionalNumber(m, key); v != nil {
			t.Errorf("%s = %v, want nil", key, *v)
		}
	}
}
