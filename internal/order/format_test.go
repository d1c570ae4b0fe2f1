package order

import (
	"strings"
	"testing"
	"time"

	"github.com/ikorka/orderbot/internal/session"
)

func TestCaptureStampsSingleInstant(t *testing.T) {
	now := time.Date(2025, time.December, 31, 21, 30, 0, 0, time.UTC)
	moscow, khabarovsk := CaptureStamps(now)

	if moscow != "2026-01-01 00:30" {
		t.Fatalf("moscow = %q", moscow)
	}
	if khabarovsk != "2026-01-01 07:30" {
		t.Fatalf("khabarovsk = %q", khabarovsk)
	}

	// Khabarovsk is always 7 hours ahead of Moscow.
	m, err := time.Parse(stampLayout, moscow)
	if err != nil {
		t.Fatal(err)
	}
	k, err := time.Parse(stampLayout, khabarovsk)
	if err != nil {
		t.Fatal(err)
	}
	if k.Sub(m) != 7*time.Hour {
		t.Fatalf("offset = %v, want 7h", k.Sub(m))
	}
}

func TestNormalizeExtraInfo(t *testing.T) {
	cases := map[string]string{
		"-":         "",
		" - ":       "",
		"":          "",
		"  текст  ": "текст",
		"--":        "--",
	}
	for in, want := range cases {
		if got := NormalizeExtraInfo(in); got != want {
			t.Errorf("NormalizeExtraInfo(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSummaryFull(t *testing.T) {
	req := Requester{ID: 123456, FullName: "Иван Петров", Username: "ivan"}
	f := session.Fields{
		PhoneContact: "+79990000000",
		Quantity:     "2",
		FullName:     "Иванов И.И.",
		Address:      "Москва, Тверская 1",
		PhoneManual:  "+79991112233",
		ExtraInfo:    "после 18:00",
	}

	got := Summary(42, req, f, "2026-01-01 00:30", "2026-01-01 07:30")

	for _, want := range []string{
		"Новый заказ № 42",
		"Время Москва 2026-01-01 00:30",
		"Время Хабаровск 2026-01-01 07:30",
		"Имя в Telegram: Иван Петров",
		"Username: @ivan",
		"User ID: 123456",
		"Профиль: tg://user?id=123456",
		"Телефон (контакт): +79990000000",
		"Телефон (ручной ввод): +79991112233",
		"ФИО получателя: Иванов И.И.",
		"Адрес: Москва, Тверская 1",
		"Заказ: 2",
		"Доп. информация: после 18:00",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestSummaryPlaceholders(t *testing.T) {
	req := Requester{ID: 9}
	got := Summary(0, req, session.Fields{}, "2026-01-01 00:30", "2026-01-01 07:30")

	if strings.Contains(got, "№") {
		t.Fatalf("unpersisted order must not carry a number:\n%s", got)
	}
	for _, want := range []string{
		"Username: —",
		"Телефон (контакт): —",
		"Телефон (ручной ввод): —",
		"Доп. информация: —",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}
