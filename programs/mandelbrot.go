package programs

func init() {
	mustRegister(Program{
		Name:           "mandelbrot",
		Mode:           Procedural{Variant: Mandelbrot},
		VertexShader:   DefaultVertexShader,
		FragmentShader: "fragment_mandelbrot.glsl",
	})
}
