package notify

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
)

// Notifier posts a user-visible notification.
type Notifier interface {
	Notify(title, content string)
}

// termuxNotificationPath is absolute so no PATH lookup happens; the lookup
// trips seccomp on older Android releases. PREFIX overrides the Termux root.
var termuxNotificationPath string

func init() {
	prefix := os.Getenv("PREFIX")
	if prefix == "" {
		prefix = "/data/data/com.termux/files/usr"
	}
	termuxNotificationPath = prefix + "/bin/termux-notification"
}

// TermuxNotifier sends Android notifications through the termux-notification
// CLI. One notification ID is reused so updates replace each other. Off
// device the command fails and the failure is logged at debug level only.
type TermuxNotifier struct {
	id      string
	timeout time.Duration
	logger  *logrus.Logger
}

// NewTermuxNotifier creates a notifier that updates a single notification.
func NewTermuxNotifier(logger *logrus.Logger) *TermuxNotifier {
	return &TermuxNotifier{
		id:      "carinfo",
		timeout: 1500 * time.Millisecond,
		logger:  logger,
	}
}

// Notify posts or updates the notification.
func (n *TermuxNotifier) Notify(title, content string) {
	if title == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	args := []string{
		"--id", n.id,
		"-t", title,
		"-c", content,
		"--priority", "low",
	}
	if err := exec.CommandContext(ctx, termuxNotificationPath, args...).Run(); err != nil {
		n.logger.WithError(err).Debug("termux-notification execution failed")
	}
}

// LogNotifier writes notifications to the log. Used when not running under
// Termux.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier { return &LogNotifier{logger: logger} }

func (n *LogNotifier) Notify(title, content string) {
	n.logger.WithField("title", title).Info(content)
}

// Available reports whether the termux-notification binary is installed.
func Available() bool {
	_, err := os.Stat(termuxNotificationPath)
	return err == nil
}
