package tui

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/gdamore/tcell"

	"foosball/client"
	"foosball/game"
)

// 画面覆盖的桌面范围（含球门后兜）
const (
	viewHalfX  = 7.1
	viewHalfY  = 3.7
	statusRows = 2
)

var (
	styleWall = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHome = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleAway = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleBall = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleText = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// Actions 非操作类按键的回调
type Actions struct {
	Quit  func()
	Ready func()
}

// Screen 终端渲染器，实现 client.Renderer
type Screen struct {
	s tcell.Screen

	mu     sync.Mutex
	title  string
	closed bool
	once   sync.Once
}

// NewScreen 初始化终端
func NewScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	s.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	s.Clear()
	return &Screen{s: s}, nil
}

// SetTitle 状态栏第一行
func (sc *Screen) SetTitle(title string) {
	sc.mu.Lock()
	sc.title = title
	sc.mu.Unlock()
}

// Close 恢复终端，同时让 Run 中阻塞的 PollEvent 返回
func (sc *Screen) Close() {
	sc.once.Do(func() {
		sc.mu.Lock()
		sc.closed = true
		sc.s.Fini()
		sc.mu.Unlock()
	})
}

// Run 读取终端事件直到 ctx 取消或屏幕关闭：操作键交给 keys，Esc/Ctrl-C/q 退出，r 请求再来一局
func (sc *Screen) Run(ctx context.Context, keys *KeySampler, act Actions) {
	go func() {
		<-ctx.Done()
		sc.Close()
	}()
	for {
		ev := sc.s.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			sc.s.Sync()
		case *tcell.EventKey:
			if keys.HandleKey(ev) {
				continue
			}
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC,
				ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
				if act.Quit != nil {
					act.Quit()
				}
				return
			case ev.Key() == tcell.KeyRune && (ev.Rune() == 'r' || ev.Rune() == 'R'):
				if act.Ready != nil {
					act.Ready()
				}
			}
		}
	}
}

// Render 画出一帧
func (sc *Screen) Render(f client.Frame) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.closed {
		return
	}
	title := sc.title

	sc.s.Clear()
	w, h := sc.s.Size()
	v := viewport{w: w, h: h - statusRows}

	sc.drawText(0, 0, title, styleText)
	sc.drawText(0, 1, statusLine(f), styleText)
	sc.drawTable(v)

	for i, slot := range game.RodLayout {
		style := styleHome
		if slot.Team == game.TeamAway {
			style = styleAway
		}
		rod := f.Table.Rods[i]
		sin, cos := math.Sincos(rod.Angle)
		for _, off := range slot.FigureOffsets() {
			// 人偶绕杆中心随杆旋转
			x := rod.X - off*sin
			y := rod.Y + off*cos
			col, row := v.cell(x, y)
			sc.s.SetContent(col, row, '█', nil, style)
		}
	}

	col, row := v.cell(f.Table.Ball.X, f.Table.Ball.Y)
	sc.s.SetContent(col, row, '●', nil, styleBall)
	sc.s.Show()
}

func (sc *Screen) drawTable(v viewport) {
	const hx, hy, mouth = 6.1, 3.6, 1.0
	for x := -hx; x <= hx; x += 0.05 {
		for _, y := range []float64{-hy, hy} {
			col, row := v.cell(x, y)
			sc.s.SetContent(col, row, '─', nil, styleWall)
		}
	}
	for y := -hy; y <= hy; y += 0.05 {
		if math.Abs(y) < mouth {
			continue
		}
		for _, x := range []float64{-hx, hx} {
			col, row := v.cell(x, y)
			sc.s.SetContent(col, row, '│', nil, styleWall)
		}
	}
}

func (sc *Screen) drawText(col, row int, s string, style tcell.Style) {
	for _, r := range s {
		sc.s.SetContent(col, row, r, nil, style)
		col++
	}
}

func statusLine(f client.Frame) string {
	team := f.Role.Team()
	s := fmt.Sprintf("you: %s (%s)   home %d : %d away   ", f.Role, team, f.Match.Score.Home, f.Match.Score.Away)
	switch f.Match.State {
	case game.StateWaitingForPeer:
		return s + "waiting for opponent..."
	case game.StateMatchOver:
		return s + fmt.Sprintf("%s wins! press r for a rematch, q to quit", f.Match.Winner)
	}
	return s + "arrows/WASD to play, q to quit"
}

// viewport 桌面坐标到终端格子的映射（Y 向上）
type viewport struct {
	w, h int
}

func (v viewport) cell(x, y float64) (col, row int) {
	col = int(math.Round((x + viewHalfX) / (2 * viewHalfX) * float64(v.w-1)))
	row = statusRows + int(math.Round((viewHalfY-y)/(2*viewHalfY)*float64(v.h-1)))
	return col, row
}
