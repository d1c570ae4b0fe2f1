package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/ikorka/orderbot/internal/session"
)

const (
	displayDash = "—"
	stampLayout = "2006-01-02 15:04"
)

var (
	zoneMoscow     = mustLoadZone("Europe/Moscow", 3*60*60)
	zoneKhabarovsk = mustLoadZone("Asia/Vladivostok", 10*60*60)
)

// mustLoadZone falls back to a fixed offset when the tzdata is missing,
// which happens on scratch containers without zoneinfo.
func mustLoadZone(name string, offsetSec int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, offsetSec)
	}
	return loc
}

// CaptureStamps renders one instant in both operator timezones. A single
// capture guarantees the two lines never drift across a minute boundary.
func CaptureStamps(now time.Time) (moscow, khabarovsk string) {
	utc := now.UTC()
	return utc.In(zoneMoscow).Format(stampLayout),
		utc.In(zoneKhabarovsk).Format(stampLayout)
}

// orDash substitutes the display placeholder for empty values. Display
// only, the stored value stays as collected.
func orDash(s string) string {
	if t := strings.TrimSpace(s); t != "" {
		return t
	}
	return displayDash
}

// NormalizeExtraInfo trims the optional last answer and maps the
// explicit "no extra info" marker to an empty value.
func NormalizeExtraInfo(s string) string {
	t := strings.TrimSpace(s)
	if t == "-" {
		return ""
	}
	return t
}

// Requester identifies the Telegram user placing the order.
type Requester struct {
	ID       int64
	FullName string
	Username string
}

// ProfileLink builds the deep link operators use to open the user's
// profile even when no username is set.
func (r Requester) ProfileLink() string {
	return fmt.Sprintf("tg://user?id=%d", r.ID)
}

func (r Requester) displayUsername() string {
	if r.Username == "" {
		return displayDash
	}
	return "@" + r.Username
}

// Summary renders the operator-channel message. orderID 0 means the
// order was not persisted (forward-only mode) and the number line is
// omitted. Every field is dash-normalized so the layout stays stable.
func Summary(orderID int64, req Requester, f session.Fields, moscow, khabarovsk string) string {
	var b strings.Builder
	if orderID > 0 {
		fmt.Fprintf(&b, "Новый заказ № %d\n\n", orderID)
	} else {
		b.WriteString("Новый заказ\n\n")
	}
	fmt.Fprintf(&b, "Время Москва %s\n", moscow)
	fmt.Fprintf(&b, "Время Хабаровск %s\n\n", khabarovsk)
	fmt.Fprintf(&b, "Имя в Telegram: %s\n", orDash(req.FullName))
	fmt.Fprintf(&b, "Username: %s\n", req.displayUsername())
	fmt.Fprintf(&b, "User ID: %d\n", req.ID)
	fmt.Fprintf(&b, "Профиль: %s\n", req.ProfileLink())
	fmt.Fprintf(&b, "Телефон (контакт): %s\n", orDash(f.PhoneContact))
	fmt.Fprintf(&b, "Телефон (ручной ввод): %s\n", orDash(f.PhoneManual))
	fmt.Fprintf(&b, "ФИО получателя: %s\n", orDash(f.FullName))
	fmt.Fprintf(&b, "Адрес: %s\n", orDash(f.Address))
	fmt.Fprintf(&b, "Заказ: %s\n", orDash(f.Quantity))
	fmt.Fprintf(&b, "Доп. информация: %s", orDash(f.ExtraInfo))
	return b.String()
}
