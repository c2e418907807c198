// Package push builds the notification payloads handed to the external
// delivery surfaces. Transport encryption and delivery are out of scope; the
// contracts here are what those surfaces consume.
package push

import "time"

const (
	// DefaultURL is the panel route an interacted notification opens or
	// focuses.
	DefaultURL = "/panel"

	ActionOpen  = "open"
	ActionClose = "close"

	// LocalAutoDismiss is how long a local/system notification stays up.
	LocalAutoDismiss = 5 * time.Second
)

type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

type Data struct {
	URL string `json:"url"`
}

// Payload is the web-push notification body.
type Payload struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Icon     string   `json:"icon,omitempty"`
	Badge    string   `json:"badge,omitempty"`
	Data     Data     `json:"data"`
	Tag      string   `json:"tag,omitempty"`
	Renotify bool     `json:"renotify"`
	Vibrate  []int    `json:"vibrate,omitempty"`
	Actions  []Action `json:"actions"`
}

func NewPayload(title, body, tag string) Payload {
	return Payload{
		Title:    title,
		Body:     body,
		Data:     Data{URL: DefaultURL},
		Tag:      tag,
		Renotify: true,
		Vibrate:  []int{200, 100, 200},
		Actions: []Action{
			{Action: ActionOpen, Title: "Open"},
			{Action: ActionClose, Title: "Dismiss"},
		},
	}
}

// LocalOptions mirrors the showNotification options of the local/system
// notification contract.
type LocalOptions struct {
	Body string `json:"body"`
	Icon string `json:"icon,omitempty"`
	Tag  string `json:"tag,omitempty"`
}

// ShouldOpen reports whether interacting with the given action should focus
// or open the panel window. Only an explicit close is a no-op.
func ShouldOpen(action string) bool {
	return action != ActionClose
}
