package rod

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// session is one headless Chrome process and the connection to it.
type session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// launch starts Chrome with the flags that keep background tabs rendering
// at full speed while a crawl batch is in flight.
func launch() (*session, error) {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return &session{browser: browser, launcher: l}, nil
}

func (s *session) close() error {
	if s == nil {
		return nil
	}
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

func (s *session) pid() int {
	if s == nil {
		return 0
	}
	return s.launcher.PID()
}
