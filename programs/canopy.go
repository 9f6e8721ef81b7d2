package programs

func init() {
	mustRegister(Program{
		Name:           "canopy",
		Mode:           Procedural{Variant: Canopy},
		VertexShader:   DefaultVertexShader,
		FragmentShader: "fragment_canopy.glsl",
	})
}
