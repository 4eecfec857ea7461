package renderer

import "github.com/ByLCY/reportpress/layout"

// Renderer 将布局结果输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误；失败时不返回部分数据。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}
