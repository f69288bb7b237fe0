package jsonx

import (
	"testing"
)

func TestFirstArray(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain array",
			text: `[1,2,3]`,
			want: `[1,2,3]`,
		},
		{
			name: "array wrapped in prose",
			text: `Sure! Here it is: [{"question":"Q1"}] hope that helps`,
			want: `[{"question":"Q1"}]`,
		},
		{
			name: "no brackets at all",
			text: "just some text without any json",
			want: "",
		},
		{
			name: "unbalanced open bracket",
			text: "broken [1, 2",
			want: "",
		},
		{
			name: "bracket inside string value",
			text: `[{"q":"use ] carefully"}]`,
			want: `[{"q":"use ] carefully"}]`,
		},
		{
			name: "escaped quote inside string",
			text: `[{"q":"she said \"hi ]\" loudly"}]`,
			want: `[{"q":"she said \"hi ]\" loudly"}]`,
		},
		{
			name: "prose brackets before real payload",
			text: `options are [a|b|c] in general, answer: ["a","b"]`,
			want: `["a","b"]`,
		},
		{
			name: "nested arrays",
			text: `result [[1,2],[3,4]] done`,
			want: `[[1,2],[3,4]]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FirstArray(tt.text)
			if got != tt.want {
				t.Errorf("FirstArray() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFirstObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "plain object",
			text: `{"headers":["A","B"]}`,
			want: `{"headers":["A","B"]}`,
		},
		{
			name: "object in prose",
			text: `Here's your table: {"headers":["A","B"],"rows":[["1","2"]]} enjoy`,
			want: `{"headers":["A","B"],"rows":[["1","2"]]}`,
		},
		{
			name: "no object",
			text: "nothing here",
			want: "",
		},
		{
			name: "nested object",
			text: `{"a":{"b":1}}`,
			want: `{"a":{"b":1}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FirstObject(tt.text)
			if got != tt.want {
				t.Errorf("FirstObject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeArray(t *testing.T) {
	type item struct {
		Question      string   `json:"question"`
		Options       []string `json:"options"`
		CorrectAnswer int      `json:"correctAnswer"`
	}

	t.Run("quiz response with preamble", func(t *testing.T) {
		text := `Sure! [{"question":"Q1","options":["A","B","C","D"],"correctAnswer":1}]`
		var items []item
		if !DecodeArray(text, &items) {
			t.Fatal("DecodeArray() = false, want true")
		}
		if len(items) != 1 {
			t.Fatalf("len(items) = %d, want 1", len(items))
		}
		if items[0].CorrectAnswer != 1 {
			t.Errorf("CorrectAnswer = %d, want 1", items[0].CorrectAnswer)
		}
	})

	t.Run("no json leaves out untouched", func(t *testing.T) {
		var items []item
		if DecodeArray("no json here", &items) {
			t.Error("DecodeArray() = true, want false")
		}
		if items != nil {
			t.Errorf("items = %v, want nil", items)
		}
	})
}
