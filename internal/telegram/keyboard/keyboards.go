// Package keyboard builds the reply keyboards of the intake flow.
package keyboard

import (
	tele "gopkg.in/telebot.v4"

	"github.com/ikorka/orderbot/internal/order"
)

// Main shows the entry-point buttons: start an order, open the FAQ.
func Main() *tele.ReplyMarkup {
	return replyRows([][]string{
		{order.BtnStartOrder},
		{order.BtnFAQ},
	})
}

// Contact shows the single button that shares the user's phone contact.
func Contact() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	markup.Reply(markup.Row(markup.Contact(order.BtnShareContact)))
	return markup
}

// NewOrder shows the single restart button after a completed order.
func NewOrder() *tele.ReplyMarkup {
	return replyRows([][]string{{order.BtnNewOrder}})
}

// Remove hides the reply keyboard.
func Remove() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ForMachine maps a machine keyboard selector to its markup. KeyboardKeep
// yields nil, meaning no markup is attached.
func ForMachine(kb order.Keyboard) *tele.ReplyMarkup {
	switch kb {
	case order.KeyboardMain:
		return Main()
	case order.KeyboardContact:
		return Contact()
	case order.KeyboardRemove:
		return Remove()
	case order.KeyboardNewOrder:
		return NewOrder()
	}
	return nil
}

func replyRows(rows [][]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}
