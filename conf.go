package ineld

import "go.uber.org/zap"

// Conf carries the collaborators a Tree calls while it mutates.
type Conf struct {
	Logger   *zap.Logger    // Structured logger, nil means no logging
	Notifier ChangeNotifier // Receives paired about-to/completed events
	Repair   CursorRepair   // Relocates cursors before subtrees vanish
}

var DefaultConf = Conf{}

// Returns a Conf that logs to l.
func (c Conf) WithLogger(l *zap.Logger) Conf {
	c.Logger = l
	return c
}

// Returns a Conf that reports structural edits to n.
func (c Conf) WithNotifier(n ChangeNotifier) Conf {
	c.Notifier = n
	return c
}

// Returns a Conf that asks r to repair cursors before removals.
func (c Conf) WithCursorRepair(r CursorRepair) Conf {
	c.Repair = r
	return c
}

func (c Conf) normalized() Conf {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Notifier == nil {
		c.Notifier = nopNotifier{}
	}
	if c.Repair == nil {
		c.Repair = nopRepair{}
	}
	return c
}
