package domain

import "encoding/json"

// Optional 用于部分更新的请求体中区分"字段没有出现"和"字段显式传了 null"：
// 前者表示保持原值不变，后者表示清空可空字段。
// 普通的指针字段做不到这一点，因为两种情况解码后都是 nil
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true

	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
