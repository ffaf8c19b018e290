// Package debounce откладывает действие до тех пор, пока вызовы не прекратятся
// на заданное окно тишины. Срабатывает только последний вызов в окне.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultWindow - окно тишины для поля поиска.
const DefaultWindow = 500 * time.Millisecond

// Debouncer держит один слот таймера: новый Trigger отменяет предыдущий.
type Debouncer struct {
	clock  clockwork.Clock
	window time.Duration

	mu    sync.Mutex
	timer clockwork.Timer
	seq   uint64
}

// New создает Debouncer. Если clock == nil, используется реальное время.
func New(clock clockwork.Clock, window time.Duration) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{clock: clock, window: window}
}

// Trigger планирует fn через окно тишины, отменяя ранее запланированный вызов.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timer = d.clock.AfterFunc(d.window, func() {
		// Stop не гарантирует отмену уже сработавшего таймера,
		// поэтому сверяем номер: выполняется только последний Trigger.
		d.mu.Lock()
		if seq != d.seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel отменяет запланированный вызов, если он есть.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

// Pending сообщает, ждет ли сейчас вызов своего срабатывания.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Window возвращает окно тишины.
func (d *Debouncer) Window() time.Duration {
	return d.window
}
