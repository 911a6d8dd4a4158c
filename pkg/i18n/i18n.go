// Package i18n resolves notification content keys into display strings.
// The ledger stores translated text, not keys, so a catalog change never
// rewrites entries already shown to the user.
package i18n

import "strings"

// Translator maps content keys to message templates. Placeholders use the
// {{name}} form and are substituted from the params map.
type Translator struct {
	messages map[string]string
}

// New returns a translator preloaded with the default English catalog
func New() *Translator {
	return &Translator{messages: defaultCatalog()}
}

// NewWithCatalog returns a translator over a caller-supplied catalog
func NewWithCatalog(messages map[string]string) *Translator {
	return &Translator{messages: messages}
}

// T resolves a key and interpolates params. An unknown key is returned
// verbatim so a missing catalog entry stays visible instead of vanishing.
func (t *Translator) T(key string, params map[string]string) string {
	tpl, ok := t.messages[key]
	if !ok {
		return key
	}
	for name, value := range params {
		tpl = strings.ReplaceAll(tpl, "{{"+name+"}}", value)
	}
	return tpl
}

func defaultCatalog() map[string]string {
	return map[string]string{
		"notification.order_placed.title":      "Order placed",
		"notification.order_placed.message":    "Your order #{{orderId}} has been placed successfully",
		"notification.order_shipped.title":     "Order shipped",
		"notification.order_shipped.message":   "Order #{{orderId}} is on its way",
		"notification.cart_reminder.title":     "Items waiting in your cart",
		"notification.cart_reminder.message":   "You have {{count}} items waiting for checkout",
		"notification.welcome.title":           "Welcome to ShopLink",
		"notification.welcome.message":         "Hi {{name}}, thanks for joining us",
		"notification.admin.new_order.title":   "New order",
		"notification.admin.new_order.message": "Order #{{orderId}} placed for {{total}}",
	}
}
