package domain

import (
	"encoding/json"
	"testing"
)

func TestOptional_UnmarshalJSON(t *testing.T) {
	type payload struct {
		Phone Optional[string] `json:"phone"`
	}

	// 字段没有出现，Set 保持 false
	var absent payload
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if absent.Phone.Set {
		t.Errorf("expected Set to be false when field is absent")
	}

	// 显式传 null，Set 为 true 且 Value 为 nil
	var null payload
	if err := json.Unmarshal([]byte(`{"phone":null}`), &null); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !null.Phone.Set {
		t.Errorf("expected Set to be true for explicit null")
	}
	if null.Phone.Value != nil {
		t.Errorf("expected nil value for explicit null, got %v", *null.Phone.Value)
	}

	// 传了具体值
	var set payload
	if err := json.Unmarshal([]byte(`{"phone":"123"}`), &set); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !set.Phone.Set || set.Phone.Value == nil || *set.Phone.Value != "123" {
		t.Errorf("expected value 123, got %+v", set.Phone)
	}
}

func TestOptional_MarshalJSON(t *testing.T) {
	v := "123"

	data, err := json.Marshal(Optional[string]{Set: true, Value: &v})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if string(data) != `"123"` {
		t.Errorf(`expected "123", got %s`, data)
	}

	data, err = json.Marshal(Optional[string]{})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if string(data) != "null" {
		t.Errorf("expected null, got %s", data)
	}
}
