// Package presenter holds the pieces shared by every screen: a Screen that owns
// observable state, a one-shot effect queue and the tasks started by intents,
// and the Status union describing a screen's content.
//
// Each screen lives in its own sub-package and exposes Handle(intent),
// State, Watch, Effects and Close.
package presenter
