package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

// Logger is a leveled console logger with an optional plain-text file
// sink. It is an explicit dependency handed to each component; there is
// no package-level instance.
type Logger struct {
	level   Level
	console io.Writer
	file    io.Writer
	now     func() time.Time
}

// New returns a Logger writing colorized output to console and, when file
// is non-nil, uncolored copies to file.
func New(level Level, console, file io.Writer) *Logger {
	if console == nil {
		console = os.Stdout
	}
	return &Logger{level: level, console: console, file: file, now: time.Now}
}

// NewFileSink opens (appending) the log file at path, creating parent
// directories as needed.
func NewFileSink(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(dirOf(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func dirOf(path string) string {
	if i := strings.LastIndexByte(path, os.PathSeparator); i > 0 {
		return path[:i]
	}
	return "."
}

func (l *Logger) log(lv Level, tag string, style lipgloss.Style, format string, args ...any) {
	if lv < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("%s - %s - %s", l.now().Format("2006-01-02 15:04:05"), tag, msg)
	fmt.Fprintln(l.console, style.Render(line))
	if l.file != nil {
		fmt.Fprintln(l.file, line)
	}
}

func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, "DEBUG", debugStyle, format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, "INFO", infoStyle, format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, "WARNING", warnStyle, format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, "ERROR", errorStyle, format, args...)
}

// Success logs an info-level line with an [OK] tag.
func (l *Logger) Success(format string, args ...any) {
	l.Info("[OK] "+format, args...)
}

// Failure logs an error-level line with a [FAIL] tag.
func (l *Logger) Failure(format string, args ...any) {
	l.Error("[FAIL] "+format, args...)
}

// Section prints a full-width banner around a title.
func (l *Logger) Section(title string) {
	sep := strings.Repeat("=", 80)
	banner := fmt.Sprintf("\n%s\n%s\n%s", sep, center(title, 80), sep)
	fmt.Fprintln(l.console, sectionStyle.Render(banner))
	if l.file != nil {
		fmt.Fprintln(l.file, banner)
	}
}

// Subsection prints a lighter banner around a title.
func (l *Logger) Subsection(title string) {
	sep := strings.Repeat("-", 80)
	banner := fmt.Sprintf("\n%s\n%s\n%s", sep, title, sep)
	fmt.Fprintln(l.console, banner)
	if l.file != nil {
		fmt.Fprintln(l.file, banner)
	}
}

// Progress logs a current/total counter line.
func (l *Logger) Progress(current, total int, message string) {
	pct := 0.0
	if total > 0 {
		pct = float64(current) / float64(total) * 100
	}
	l.Info("[PROGRESS] %d/%d (%.1f%%) %s", current, total, pct, message)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
