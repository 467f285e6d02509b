package dashboard

import (
	"context"
	"sync"
)

// list names a backend collection mirrored in the view.
type list int

const (
	listHistory list = iota
	listAllNotes
	listCityNotes
	listPhotos
	numLists
)

// cityScoped lists belong to one selection and are dropped when it changes.
func (l list) cityScoped() bool {
	return l == listCityNotes || l == listPhotos
}

// listSeq orders reads of one list. Only a read issued after the last
// applied one may replace it.
type listSeq struct {
	issued  uint64
	applied uint64
}

// mutate performs a write and then re-reads the given lists so the view
// mirrors the backend's ordering and identifiers. The lists are re-read
// even when the write is refused.
func (d *Dashboard) mutate(ctx context.Context, op string, write func(context.Context) bool, lists ...list) error {
	ok := write(ctx)
	d.refresh(ctx, lists...)
	if !ok {
		d.log.Warn().Str("op", op).Msg("write not accepted")
		return ErrWriteFailed
	}
	return nil
}

// refresh re-reads lists for the current selection.
func (d *Dashboard) refresh(ctx context.Context, lists ...list) {
	tok, city, _ := d.selection()
	d.refreshFor(ctx, tok, city, lists...)
}

// refreshFor re-reads lists concurrently on behalf of selection tok.
func (d *Dashboard) refreshFor(ctx context.Context, tok uint64, city string, lists ...list) {
	var wg sync.WaitGroup
	for _, l := range lists {
		if l.cityScoped() && city == "" {
			continue
		}
		d.mu.Lock()
		d.seq[l].issued++
		n := d.seq[l].issued
		d.mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			d.load(ctx, l, n, tok, city)
		}()
	}
	wg.Wait()
}

func (d *Dashboard) load(ctx context.Context, l list, n, tok uint64, city string) {
	var set func(v *View)
	switch l {
	case listHistory:
		items := d.gw.History(ctx)
		set = func(v *View) { v.History = items }
	case listAllNotes:
		items := d.gw.AllNotes(ctx)
		set = func(v *View) { v.AllNotes = items }
	case listCityNotes:
		items := d.gw.CityNotes(ctx, city)
		set = func(v *View) { v.CityNotes = items }
	case listPhotos:
		items := d.gw.CityPhotos(ctx, city)
		set = func(v *View) { v.Photos = items }
	default:
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if n <= d.seq[l].applied {
		return
	}
	if l.cityScoped() && d.token != tok {
		return
	}
	d.seq[l].applied = n
	set(&d.view)
}
