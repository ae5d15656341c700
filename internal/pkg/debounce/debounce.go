// debounce - единый примитив отложенного вызова для поисковых полей и селекторов.
package debounce

import (
	"sync"
	"time"
)

// Debouncer откладывает вызов fn на delay; каждый новый Do сбрасывает
// ожидающий вызов. Одновременно ожидает не больше одного fn.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64
}

// New создаёт Debouncer. delay <= 0 - вызов выполняется синхронно в Do.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do планирует fn и возвращает функцию отмены именно этого вызова.
// Отмена уже устаревшего (перекрытого) вызова ничего не делает.
func (d *Debouncer) Do(fn func()) (cancel func()) {
	if d.delay <= 0 {
		fn()
		return func() {}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		fn()
	})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		if d.seq == seq && d.timer != nil {
			d.timer.Stop()
			d.timer = nil
		}
	}
}

// Stop отменяет ожидающий вызов, если он есть.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
}

// Pending сообщает, ожидает ли сейчас отложенный вызов.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}
