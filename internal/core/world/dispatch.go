package world

import (
	"encoding/json"
	"fmt"

	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/models"
	"github.com/zeusync/tankclient/internal/core/observability/log"
)

// dispatch is the only place entities are inserted, mutated or deleted.
func (w *Engine) dispatch(ev events.Event) error {
	switch ev.Kind {
	case events.KindMapCreate:
		return w.mapCreate(ev)
	case events.KindEntityCreate:
		return w.entityCreate(ev)
	case events.KindEntityRemove:
		return w.entityRemove(ev)
	case events.KindEntityUpdate:
		return w.entityUpdate(ev)
	case events.KindPlayerUpdate:
		return w.playerUpdate(ev)
	case events.KindMarketUpdate:
		return w.rule.ProcessEvent(w, ev)
	case events.KindGameEnd:
		return w.gameEnd(ev)
	default:
		w.logger.Debug("Ignoring event without handler",
			log.Int64("t", ev.T),
			log.String("type", ev.Type))
		w.metrics.EventIgnored(ev.Type)
		return nil
	}
}

type mapCreateParams struct {
	X         *float64        `json:"x"`
	Y         *float64        `json:"y"`
	UID0      *models.UID     `json:"uid0"`
	UID       *models.UID     `json:"uid"`
	Map       json.RawMessage `json:"map"`
	CellNames json.RawMessage `json:"cellNames"`
	IncMap    []*[2]float64   `json:"incMap"`
}

func (w *Engine) mapCreate(ev events.Event) error {
	var p mapCreateParams
	if err := ev.Bind(&p); err != nil {
		return fmt.Errorf("decode %s: %w", ev.Kind, err)
	}

	raw := p.CellNames
	if len(raw) == 0 {
		raw = p.Map
	}
	if len(raw) == 0 {
		return &events.MissingFieldError{Kind: ev.Kind, Field: "cellNames"}
	}
	cells, err := decodeCells(raw)
	if err != nil {
		return fmt.Errorf("decode %s cells: %w", ev.Kind, err)
	}

	width, height := w.width, w.height
	if p.X != nil {
		width = *p.X
	}
	if p.Y != nil {
		height = *p.Y
	}
	cols, rows := int(width), int(height)

	// Resolve every type first so a bad cell leaves the world untouched.
	types := make([]*models.Type, len(cells))
	for i, name := range cells {
		if name == "" {
			continue
		}
		typ, ok := w.types.Type(name)
		if !ok {
			return &events.MissingTypeError{Name: name}
		}
		types[i] = typ
	}

	w.width, w.height = width, height
	w.rescale()

	var uid models.UID
	switch {
	case p.UID0 != nil:
		uid = *p.UID0
	case p.UID != nil:
		uid = *p.UID
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			idx := row*cols + col
			if idx >= len(cells) || cells[idx] == "" {
				continue
			}
			x, y := cellCenter(col, row, height)
			e := models.NewEntity(uid, types[idx], x, y, 0, 1, 1)
			w.insert(e)
			uid++
		}
	}

	if len(p.IncMap) > 0 {
		w.tiles = w.tiles[:0]
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				idx := row*cols + col
				if idx >= len(p.IncMap) || p.IncMap[idx] == nil {
					continue
				}
				inc := p.IncMap[idx]
				w.tiles = append(w.tiles, &models.Tile{
					Col:          col,
					Row:          row,
					HPRecover:    inc[0],
					MoneyRecover: inc[1],
				})
			}
		}
		w.renderer.TilesChanged(w.tiles)
	}

	w.logger.Info("Map created",
		log.Float64("width", width),
		log.Float64("height", height),
		log.Int("entities", len(w.entities)),
		log.Int("tiles", len(w.tiles)))
	return nil
}

// decodeCells accepts either a flat row-major list or a list of rows.
// cellCenter maps a grid cell to world coordinates. Rows count down from
// the top edge (worldY = height - row) and blocks sit at the centre of
// their unit cell, so row 0 spans [height-1, height].
func cellCenter(col, row int, height float64) (x, y float64) {
	return float64(col) + 0.5, height - float64(row) - 0.5
}

func decodeCells(raw json.RawMessage) ([]string, error) {
	var flat []string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	var grid [][]string
	if err := json.Unmarshal(raw, &grid); err != nil {
		return nil, err
	}
	var cells []string
	for _, row := range grid {
		cells = append(cells, row...)
	}
	return cells, nil
}

type entityCreateParams struct {
	UID          *models.UID `json:"uid"`
	Name         *string     `json:"name"`
	X            *float64    `json:"x"`
	Y            *float64    `json:"y"`
	Rad          *float64    `json:"rad"`
	Width        *float64    `json:"width"`
	Height       *float64    `json:"height"`
	Owner        *string     `json:"owner"`
	MaxHP        *float64    `json:"maxHp"`
	VisionRadius *float64    `json:"visionRadius"`
	Money        *float64    `json:"money"`
}

func (w *Engine) entityCreate(ev events.Event) error {
	var p entityCreateParams
	if err := ev.Bind(&p); err != nil {
		return fmt.Errorf("decode %s: %w", ev.Kind, err)
	}
	switch {
	case p.UID == nil:
		return &events.MissingFieldError{Kind: ev.Kind, Field: "uid"}
	case p.Name == nil:
		return &events.MissingFieldError{Kind: ev.Kind, Field: "name"}
	case p.X == nil:
		return &events.MissingFieldError{Kind: ev.Kind, Field: "x"}
	case p.Y == nil:
		return &events.MissingFieldError{Kind: ev.Kind, Field: "y"}
	}
	typ, ok := w.types.Type(*p.Name)
	if !ok {
		return &events.MissingTypeError{Name: *p.Name}
	}
	if typ.IsTank() && p.Owner == nil {
		return &events.MissingFieldError{Kind: ev.Kind, Field: "owner"}
	}

	rad := deref(p.Rad)
	if !typ.IsTank() {
		e := models.NewEntity(*p.UID, typ, *p.X, *p.Y, rad, deref(p.Width), deref(p.Height))
		w.insert(e)
		return nil
	}

	e := models.NewPlayer(*p.UID, typ, *p.X, *p.Y, rad, *p.Owner, p.MaxHP, w.defaults, w.colors.Next())
	if p.Width != nil {
		e.Width = *p.Width
	}
	if p.Height != nil {
		e.Height = *p.Height
	}
	if p.VisionRadius != nil {
		e.Player.VisionRadius = *p.VisionRadius
	}
	if p.Money != nil {
		e.Player.Money = *p.Money
	}
	w.insert(e)

	if w.mode == ModeRealTime && w.controlled == nil && e.Player.Owner == w.playerName {
		w.bindControlled(e)
	}
	return nil
}

// insert adds e to the world, replacing any live entity with the same UID.
func (w *Engine) insert(e *models.Entity) {
	if old, ok := w.entities[e.UID]; ok {
		w.logger.Warn("Replacing live entity with duplicate uid", log.Int64("uid", int64(e.UID)))
		delete(w.entities, e.UID)
		w.renderer.EntityRemoved(old)
		if old == w.controlled {
			w.controlled = nil
		}
	}

	if !e.IsPlayer() {
		e.SetVisible(w.initialVisibility(e))
	}
	w.entities[e.UID] = e
	w.renderer.EntityAdded(e)

	if e.IsPlayer() {
		if _, known := w.players[e.UID]; !known {
			w.rosterOrder = append(w.rosterOrder, e.UID)
		}
		w.players[e.UID] = e
		w.notifier.PlayerSnapshotChanged(e.UID, e.Snapshot())
		w.notifier.RosterChanged(w.Roster())
	}
}

func (w *Engine) bindControlled(e *models.Entity) {
	w.controlled = e
	w.logger.Info("Controlled tank bound",
		log.Int64("uid", int64(e.UID)),
		log.String("owner", e.Player.Owner))
	w.RecomputeVisibility(e, e.Player.VisionRadius)
	for _, fn := range w.onBound {
		fn(e)
	}
}

type uidParams struct {
	UID *models.UID `json:"uid"`
}

func (w *Engine) entityRemove(ev events.Event) error {
	var p uidParams
	if err := ev.Bind(&p); err != nil {
		return fmt.Errorf("decode %s: %w", ev.Kind, err)
	}
	if p.UID == nil {
		return &events.MissingFieldError{Kind: ev.Kind, Field: "uid"}
	}
	e, ok := w.entities[*p.UID]
	if !ok {
		return nil
	}
	delete(w.entities, e.UID)
	w.renderer.EntityRemoved(e)

	if !e.IsPlayer() {
		return nil
	}
	if e.Player.Alive {
		e.Player.Alive = false
		w.notifier.PlayerSnapshotChanged(e.UID, e.Snapshot())
		w.notifier.RosterChanged(w.Roster())
	}
	if w.mode == ModeRealTime && e == w.controlled && !w.revealed {
		w.revealed = true
		w.RevealAll()
		w.notifier.Notice("Your tank was destroyed. The whole map is now visible.")
	}
	return nil
}

type entityUpdateParams struct {
	UID *models.UID `json:"uid"`
	models.EntityPatch
}

func (w *Engine) entityUpdate(ev events.Event) error {
	var p entityUpdateParams
	if err := ev.Bind(&p); err != nil {
		return fmt.Errorf("decode %s: %w", ev.Kind, err)
	}
	if p.UID == nil {
		return &events.MissingFieldError{Kind: ev.Kind, Field: "uid"}
	}
	e, ok := w.entities[*p.UID]
	if !ok {
		return nil
	}
	e.Apply(p.EntityPatch)
	w.renderer.GeometryChanged(e)
	if e.IsPlayer() && p.HP != nil {
		w.notifier.PlayerSnapshotChanged(e.UID, e.Snapshot())
	}

	if center, ok := w.visionCenter(); ok {
		switch {
		case e == center:
			w.RecomputeVisibility(center, center.Player.VisionRadius)
		case !e.IsPlayer():
			w.setVisible(e, e.DistanceTo(center) <= center.Player.VisionRadius)
		}
	}
	return nil
}

type playerUpdateParams struct {
	UID *models.UID `json:"uid"`
	models.PlayerPatch
}

func (w *Engine) playerUpdate(ev events.Event) error {
	var p playerUpdateParams
	if err := ev.Bind(&p); err != nil {
		return fmt.Errorf("decode %s: %w", ev.Kind, err)
	}
	if p.UID == nil {
		return &events.MissingFieldError{Kind: ev.Kind, Field: "uid"}
	}
	e, ok := w.players[*p.UID]
	if !ok {
		return nil
	}
	e.ApplyPlayer(p.PlayerPatch)
	w.renderer.GeometryChanged(e)
	w.notifier.PlayerSnapshotChanged(e.UID, e.Snapshot())

	if center, ok := w.visionCenter(); ok && e == center {
		w.RecomputeVisibility(center, center.Player.VisionRadius)
	}
	return nil
}

type gameEndParams struct {
	UIDs *[]models.UID `json:"uids"`
	Rank *[]models.UID `json:"rank"`
}

func (w *Engine) gameEnd(ev events.Event) error {
	var p gameEndParams
	if err := ev.Bind(&p); err != nil {
		return fmt.Errorf("decode %s: %w", ev.Kind, err)
	}
	if p.UIDs == nil && p.Rank == nil {
		return &events.MissingFieldError{Kind: ev.Kind, Field: "rank"}
	}
	var ranking Ranking
	if p.UIDs != nil {
		ranking.UIDs = *p.UIDs
	}
	if p.Rank != nil {
		ranking.Rank = *p.Rank
	} else {
		ranking.Rank = ranking.UIDs
	}

	w.frozen = true
	w.logger.Info("Game ended", log.Int64("t", ev.T), log.Int("players", len(ranking.Rank)))
	w.notifier.GameEnded(ranking)
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
