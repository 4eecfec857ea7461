package layout

import (
	"fmt"

	"go.uber.org/zap"
)

// Splitter is a block that can be broken across pages.
type Splitter interface {
	Block
	// Split returns the part fitting into avail and the rest (nil when
	// nothing is left). ok is false when not even a minimal part fits.
	Split(avail float64) (head, tail Block, ok bool)
	// SplitMin returns the smallest part that can stand on its own.
	SplitMin() (head, tail Block, ok bool)
}

// Composer 将块依次排入页面：放得下就放；可拆分的块按行拆分；
// 不可拆分的块换页后再放；空白页仍放不下时强制放置并记录溢出。
// Forced 块仅在超过整页高度时才留在当前页。
type Composer struct {
	Page      PageContext
	Decorator Decorator
	Log       *zap.Logger
}

type pageState struct {
	page   Page
	cursor float64
	placed int
}

// Compose lays out blocks and returns the finished pages.
func (c *Composer) Compose(blocks []Block) ([]Page, error) {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}
	width := c.Page.UsableWidth()
	left := c.Page.Margin.Left
	bottom := c.Page.FrameBottom()
	frame := c.Page.FrameHeight()

	var pages []Page
	cur := c.newPage(1)
	finish := func() error {
		if c.Decorator != nil {
			if err := c.Decorator.Decorate(&cur.page.Chrome, cur.page.Number, c.Page.Geometry()); err != nil {
				return fmt.Errorf("绘制第 %d 页页眉页脚失败: %w", cur.page.Number, err)
			}
		}
		pages = append(pages, cur.page)
		return nil
	}
	breakPage := func() error {
		if err := finish(); err != nil {
			return err
		}
		cur = c.newPage(cur.page.Number + 1)
		return nil
	}
	place := func(b Block, h float64) {
		b.Render(&cur.page.Body, left, cur.cursor)
		cur.cursor += h
		if _, ok := b.(Spacer); !ok {
			cur.placed++
		}
	}
	overflow := func(b Block, h float64) {
		log.Warn("Block exceeds page frame",
			zap.String("event", EventOverflow),
			zap.Int("page", cur.page.Number),
			zap.Float64("height", h),
			zap.Float64("available", bottom-cur.cursor))
	}

	for _, b := range blocks {
		if ch, ok := b.(*Chunk); ok && ch.Deferred && cur.placed > 0 {
			if err := breakPage(); err != nil {
				return nil, err
			}
		}
		for b != nil {
			remaining := bottom - cur.cursor
			_, h := b.Measure(width, remaining)
			if h <= remaining+sizeEpsilon {
				place(b, h)
				break
			}
			if _, ok := b.(Spacer); ok {
				break
			}
			if ch, ok := b.(*Chunk); ok && ch.Forced {
				// 空白页放得下就换页，只有超过整页的块才压在当前页
				if cur.placed > 0 && h <= frame+sizeEpsilon {
					if err := breakPage(); err != nil {
						return nil, err
					}
					continue
				}
				place(b, h)
				break
			}
			if sp, ok := b.(Splitter); ok {
				head, tail, fits := sp.Split(remaining)
				if !fits {
					if cur.placed > 0 {
						if err := breakPage(); err != nil {
							return nil, err
						}
						continue
					}
					if head, tail, fits = sp.SplitMin(); !fits {
						overflow(b, h)
						place(b, h)
						break
					}
				}
				_, hh := head.Measure(width, remaining)
				if hh > remaining+sizeEpsilon {
					overflow(head, hh)
				}
				place(head, hh)
				if tail == nil {
					break
				}
				if err := breakPage(); err != nil {
					return nil, err
				}
				b = tail
				continue
			}
			if cur.placed > 0 {
				if err := breakPage(); err != nil {
					return nil, err
				}
				continue
			}
			overflow(b, h)
			place(b, h)
			break
		}
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return pages, nil
}

func (c *Composer) newPage(number int) *pageState {
	return &pageState{
		page: Page{
			Number: number,
			Width:  c.Page.PageWidth,
			Height: c.Page.PageHeight,
			Margin: c.Page.Margin,
		},
		cursor: c.Page.FrameTop(),
	}
}
