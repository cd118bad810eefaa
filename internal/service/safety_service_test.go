package service

import "testing"

func TestSafetyCheckerCheck(t *testing.T) {
	s := NewSafetyChecker(nil)

	cases := []struct {
		name      string
		text      string
		blocked   bool
		noteCount int
	}{
		{name: "texto limpio", text: "周末一起去爬山吧", blocked: false, noteCount: 0},
		{name: "palabra vetada", text: "这种歧视真的不好", blocked: true, noteCount: 1},
		{name: "telefono", text: "我的号码是 13812345678 哦", blocked: false, noteCount: 1},
		{name: "identidad", text: "证件 11010519491231002X", blocked: false, noteCount: 1},
		{name: "vetada y telefono", text: "恐怖 13812345678", blocked: true, noteCount: 2},
		{name: "telefono pegado a texto chino", text: "我的电话13812345678", blocked: false, noteCount: 0},
		{name: "telefono entre caracteres chinos", text: "电话是13812345678哦", blocked: false, noteCount: 0},
		{name: "telefono tras puntuacion china", text: "电话：13812345678。", blocked: false, noteCount: 1},
		{name: "telefono dentro de numero largo", text: "订单 9913812345678", blocked: false, noteCount: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Check(tc.text)
			if got.Blocked != tc.blocked {
				t.Fatalf("blocked: got %v want %v", got.Blocked, tc.blocked)
			}
			if len(got.Notes) != tc.noteCount {
				t.Fatalf("notes: got %v want %d", got.Notes, tc.noteCount)
			}
		})
	}
}

func TestSafetyCheckerRedact(t *testing.T) {
	s := NewSafetyChecker(nil)
	got := s.Redact("call 13812345678 or 13998765432")
	if got != "call [已脱敏] or [已脱敏]" {
		t.Fatalf("unexpected redaction: %q", got)
	}
	if s.Redact("没有敏感信息") != "没有敏感信息" {
		t.Fatalf("expected text unchanged")
	}

	cases := []struct{ in, want string }{
		{in: "我的电话13812345678", want: "我的电话13812345678"},
		{in: "电话：13812345678。", want: "电话：[已脱敏]。"},
		{in: "13812345678", want: "[已脱敏]"},
		{in: "证件11010519491231002X", want: "证件11010519491231002X"},
		{in: "证件 11010519491231002X 已交", want: "证件 [已脱敏] 已交"},
	}
	for _, tc := range cases {
		if got := s.Redact(tc.in); got != tc.want {
			t.Fatalf("Redact(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
