package programs

func init() {
	mustRegister(Program{
		Name:           "postprocess",
		Mode:           Image{},
		VertexShader:   "vertex_postprocess.glsl",
		FragmentShader: "fragment_postprocess.glsl",
	})
}
