package gpu

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/soypat/glgl/v4.1-core/glgl"

	"github.com/stewi1014/procview/render"
)

var _ render.GL = (*Device)(nil)

func (d *Device) ClearColor(c mgl32.Vec4) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
}

func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) UseProgram(prog uint32) {
	gl.UseProgram(prog)
}

func (d *Device) UniformLocation(prog uint32, name string) int32 {
	return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
}

func (d *Device) Uniform1f(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (d *Device) Uniform2f(loc int32, v mgl32.Vec2) {
	gl.Uniform2fv(loc, 1, &v[0])
}

func (d *Device) Uniform3f(loc int32, v mgl32.Vec3) {
	gl.Uniform3fv(loc, 1, &v[0])
}

func (d *Device) Uniform1i(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (d *Device) CreateVertexLayout(l render.VertexLayout) (uint32, error) {
	if len(l.Vertices) == 0 || len(l.Components) == 0 {
		return 0, fmt.Errorf("empty vertex layout")
	}

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	defer gl.BindVertexArray(0)

	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(l.Vertices)*4, gl.Ptr(l.Vertices), gl.STATIC_DRAW)
	buffers := []uint32{vbo}

	stride := l.Stride()
	offset := uintptr(0)
	for i, n := range l.Components {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointerWithOffset(uint32(i), n, gl.FLOAT, false, stride, offset)
		offset += uintptr(n) * 4
	}

	if len(l.Indices) > 0 {
		var ebo uint32
		gl.GenBuffers(1, &ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(l.Indices)*4, gl.Ptr(l.Indices), gl.STATIC_DRAW)
		buffers = append(buffers, ebo)
	}

	d.buffers[vao] = buffers
	if err := glgl.Err(); err != nil {
		d.DeleteVertexLayout(vao)
		return 0, fmt.Errorf("creating vertex layout: %w", err)
	}
	return vao, nil
}

func (d *Device) DeleteVertexLayout(vao uint32) {
	buffers := d.buffers[vao]
	delete(d.buffers, vao)
	if len(buffers) > 0 {
		gl.DeleteBuffers(int32(len(buffers)), &buffers[0])
	}
	gl.DeleteVertexArrays(1, &vao)
}

func (d *Device) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (d *Device) CreateTexture(t render.TextureData) (uint32, error) {
	var internal int32
	var format uint32
	switch t.Channels {
	case 1:
		internal, format = gl.R8, gl.RED
	case 3:
		internal, format = gl.RGB8, gl.RGB
	case 4:
		internal, format = gl.RGBA8, gl.RGBA
	default:
		return 0, fmt.Errorf("unsupported channel count %d", t.Channels)
	}
	if len(t.Pix) < t.Width*t.Height*t.Channels {
		return 0, fmt.Errorf("texture %dx%dx%d has only %d bytes", t.Width, t.Height, t.Channels, len(t.Pix))
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	defer gl.BindTexture(gl.TEXTURE_2D, 0)

	wrap := int32(gl.CLAMP_TO_EDGE)
	if t.Repeat {
		wrap = gl.REPEAT
	}
	filter := int32(gl.LINEAR)
	if t.Filter == render.Nearest {
		filter = gl.NEAREST
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)

	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(t.Width), int32(t.Height), 0,
		format, gl.UNSIGNED_BYTE, gl.Ptr(t.Pix))

	if err := glgl.Err(); err != nil {
		gl.DeleteTextures(1, &tex)
		return 0, fmt.Errorf("uploading %dx%d texture: %w", t.Width, t.Height, err)
	}
	return tex, nil
}

func (d *Device) DeleteTexture(tex uint32) {
	gl.DeleteTextures(1, &tex)
}

func (d *Device) BindTexture(unit int32, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func primitive(p render.Primitive) uint32 {
	switch p {
	case render.TriangleStrip:
		return gl.TRIANGLE_STRIP
	default:
		return gl.TRIANGLES
	}
}

func (d *Device) DrawArrays(mode render.Primitive, first, count int32) {
	gl.DrawArrays(primitive(mode), first, count)
}

func (d *Device) DrawElements(mode render.Primitive, count int32) {
	gl.DrawElementsWithOffset(primitive(mode), count, gl.UNSIGNED_INT, 0)
}

func (d *Device) ReadPixels(x, y, width, height int32, dst []byte) error {
	if need := int(width) * int(height) * 3; len(dst) < need {
		return fmt.Errorf("read buffer holds %d bytes, need %d", len(dst), need)
	}
	gl.ReadPixels(x, y, width, height, gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(dst))
	return glgl.Err()
}
