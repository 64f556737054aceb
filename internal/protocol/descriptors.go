package protocol

import "github.com/danmuck/wlprobe/internal/wire"

func intArg(name string) Arg { return Arg{Name: name, Type: wire.ArgInt} }
func uintArg(name string) Arg { return Arg{Name: name, Type: wire.ArgUint} }
func fixedArg(name string) Arg { return Arg{Name: name, Type: wire.ArgFixed} }
func strArg(name string) Arg { return Arg{Name: name, Type: wire.ArgString} }
func arrayArg(name string) Arg { return Arg{Name: name, Type: wire.ArgArray} }
func fdArg(name string) Arg { return Arg{Name: name, Type: wire.ArgFD} }

func objArg(name, iface string) Arg {
	return Arg{Name: name, Type: wire.ArgObject, Interface: iface}
}

func nullObjArg(name, iface string) Arg {
	return Arg{Name: name, Type: wire.ArgObject, Interface: iface, Nullable: true}
}

func newIDArg(name, iface string) Arg {
	return Arg{Name: name, Type: wire.ArgNewID, Interface: iface}
}

func msg(name string, since uint32, args ...Arg) Message {
	return Message{Name: name, Since: since, Args: args}
}

var Display = Interface{
	Name:     "wl_display",
	Version:  1,
	Teardown: TeardownDisconnect,
	Requests: []Message{
		msg("sync", 1, newIDArg("callback", "wl_callback")),
		msg("get_registry", 1, newIDArg("registry", "wl_registry")),
	},
	Events: []Message{
		msg("error", 1, objArg("object_id", ""), uintArg("code"), strArg("message")),
		msg("delete_id", 1, uintArg("id")),
	},
}

var Registry = Interface{
	Name:    "wl_registry",
	Version: 1,
	Requests: []Message{
		msg("bind", 1, uintArg("name"), newIDArg("id", "")),
	},
	Events: []Message{
		msg("global", 1, uintArg("name"), strArg("interface"), uintArg("version")),
		msg("global_remove", 1, uintArg("name")),
	},
}

var Callback = Interface{
	Name:    "wl_callback",
	Version: 1,
	Events: []Message{
		msg("done", 1, uintArg("callback_data")),
	},
}

var Compositor = Interface{
	Name:    "wl_compositor",
	Version: 6,
	Requests: []Message{
		msg("create_surface", 1, newIDArg("id", "wl_surface")),
		msg("create_region", 1, newIDArg("id", "wl_region")),
	},
}

var ShmPool = Interface{
	Name:    "wl_shm_pool",
	Version: 1,
	Requests: []Message{
		msg("create_buffer", 1,
			newIDArg("id", "wl_buffer"),
			intArg("offset"), intArg("width"), intArg("height"), intArg("stride"),
			uintArg("format")),
		msg("destroy", 1),
		msg("resize", 1, intArg("size")),
	},
}

var Shm = Interface{
	Name:    "wl_shm",
	Version: 2,
	Requests: []Message{
		msg("create_pool", 1, newIDArg("id", "wl_shm_pool"), fdArg("fd"), intArg("size")),
		msg("release", 2),
	},
	Events: []Message{
		msg("format", 1, uintArg("format")),
	},
}

var Buffer = Interface{
	Name:    "wl_buffer",
	Version: 1,
	Requests: []Message{
		msg("destroy", 1),
	},
	Events: []Message{
		msg("release", 1),
	},
}

var Surface = Interface{
	Name:    "wl_surface",
	Version: 6,
	Requests: []Message{
		msg("destroy", 1),
		msg("attach", 1, nullObjArg("buffer", "wl_buffer"), intArg("x"), intArg("y")),
		msg("damage", 1, intArg("x"), intArg("y"), intArg("width"), intArg("height")),
		msg("frame", 1, newIDArg("callback", "wl_callback")),
		msg("set_opaque_region", 1, nullObjArg("region", "wl_region")),
		msg("set_input_region", 1, nullObjArg("region", "wl_region")),
		msg("commit", 1),
		msg("set_buffer_transform", 2, intArg("transform")),
		msg("set_buffer_scale", 3, intArg("scale")),
		msg("damage_buffer", 4, intArg("x"), intArg("y"), intArg("width"), intArg("height")),
		msg("offset", 5, intArg("x"), intArg("y")),
	},
	Events: []Message{
		msg("enter", 1, objArg("output", "wl_output")),
		msg("leave", 1, objArg("output", "wl_output")),
		msg("preferred_buffer_scale", 6, intArg("factor")),
		msg("preferred_buffer_transform", 6, uintArg("transform")),
	},
}

var Seat = Interface{
	Name:    "wl_seat",
	Version: 9,
	Requests: []Message{
		msg("get_pointer", 1, newIDArg("id", "wl_pointer")),
		msg("get_keyboard", 1, newIDArg("id", "wl_keyboard")),
		msg("get_touch", 1, newIDArg("id", "wl_touch")),
		msg("release", 5),
	},
	Events: []Message{
		msg("capabilities", 1, uintArg("capabilities")),
		msg("name", 2, strArg("name")),
	},
}

var Pointer = Interface{
	Name:          "wl_pointer",
	Version:       9,
	Teardown:      TeardownRelease,
	ReleaseOpcode: 1,
	Requests: []Message{
		msg("set_cursor", 1, uintArg("serial"), nullObjArg("surface", "wl_surface"), intArg("hotspot_x"), intArg("hotspot_y")),
		msg("release", 3),
	},
	Events: []Message{
		msg("enter", 1, uintArg("serial"), objArg("surface", "wl_surface"), fixedArg("surface_x"), fixedArg("surface_y")),
		msg("leave", 1, uintArg("serial"), objArg("surface", "wl_surface")),
		msg("motion", 1, uintArg("time"), fixedArg("surface_x"), fixedArg("surface_y")),
		msg("button", 1, uintArg("serial"), uintArg("time"), uintArg("button"), uintArg("state")),
		msg("axis", 1, uintArg("time"), uintArg("axis"), fixedArg("value")),
		msg("frame", 5),
		msg("axis_source", 5, uintArg("axis_source")),
		msg("axis_stop", 5, uintArg("time"), uintArg("axis")),
		msg("axis_discrete", 5, uintArg("axis"), intArg("discrete")),
		msg("axis_value120", 8, uintArg("axis"), intArg("value120")),
		msg("axis_relative_direction", 9, uintArg("axis"), uintArg("direction")),
	},
}

var Keyboard = Interface{
	Name:          "wl_keyboard",
	Version:       9,
	Teardown:      TeardownRelease,
	ReleaseOpcode: 0,
	Requests: []Message{
		msg("release", 3),
	},
	Events: []Message{
		msg("keymap", 1, uintArg("format"), fdArg("fd"), uintArg("size")),
		msg("enter", 1, uintArg("serial"), objArg("surface", "wl_surface"), arrayArg("keys")),
		msg("leave", 1, uintArg("serial"), objArg("surface", "wl_surface")),
		msg("key", 1, uintArg("serial"), uintArg("time"), uintArg("key"), uintArg("state")),
		msg("modifiers", 1, uintArg("serial"), uintArg("mods_depressed"), uintArg("mods_latched"), uintArg("mods_locked"), uintArg("group")),
		msg("repeat_info", 4, intArg("rate"), intArg("delay")),
	},
}

var Touch = Interface{
	Name:          "wl_touch",
	Version:       9,
	Teardown:      TeardownRelease,
	ReleaseOpcode: 0,
	Requests: []Message{
		msg("release", 3),
	},
	Events: []Message{
		msg("down", 1, uintArg("serial"), uintArg("time"), objArg("surface", "wl_surface"), intArg("id"), fixedArg("x"), fixedArg("y")),
		msg("up", 1, uintArg("serial"), uintArg("time"), intArg("id")),
		msg("motion", 1, uintArg("time"), intArg("id"), fixedArg("x"), fixedArg("y")),
		msg("frame", 1),
		msg("cancel", 1),
		msg("shape", 6, intArg("id"), fixedArg("major"), fixedArg("minor")),
		msg("orientation", 6, intArg("id"), fixedArg("orientation")),
	},
}

var Output = Interface{
	Name:    "wl_output",
	Version: 4,
	Requests: []Message{
		msg("release", 3),
	},
	Events: []Message{
		msg("geometry", 1,
			intArg("x"), intArg("y"), intArg("physical_width"), intArg("physical_height"),
			intArg("subpixel"), strArg("make"), strArg("model"), intArg("transform")),
		msg("mode", 1, uintArg("flags"), intArg("width"), intArg("height"), intArg("refresh")),
		msg("done", 2),
		msg("scale", 2, intArg("factor")),
		msg("name", 4, strArg("name")),
		msg("description", 4, strArg("description")),
	},
}

var Shell = Interface{
	Name:    "wl_shell",
	Version: 1,
	Requests: []Message{
		msg("get_shell_surface", 1, newIDArg("id", "wl_shell_surface"), objArg("surface", "wl_surface")),
	},
}

var ShellSurface = Interface{
	Name:    "wl_shell_surface",
	Version: 1,
	Requests: []Message{
		msg("pong", 1, uintArg("serial")),
		msg("move", 1, objArg("seat", "wl_seat"), uintArg("serial")),
		msg("resize", 1, objArg("seat", "wl_seat"), uintArg("serial"), uintArg("edges")),
		msg("set_toplevel", 1),
		msg("set_transient", 1, objArg("parent", "wl_surface"), intArg("x"), intArg("y"), uintArg("flags")),
		msg("set_fullscreen", 1, uintArg("method"), uintArg("framerate"), nullObjArg("output", "wl_output")),
		msg("set_popup", 1, objArg("seat", "wl_seat"), uintArg("serial"), objArg("parent", "wl_surface"), intArg("x"), intArg("y"), uintArg("flags")),
		msg("set_maximized", 1, nullObjArg("output", "wl_output")),
		msg("set_title", 1, strArg("title")),
		msg("set_class", 1, strArg("class_")),
	},
	Events: []Message{
		msg("ping", 1, uintArg("serial")),
		msg("configure", 1, uintArg("edges"), intArg("width"), intArg("height")),
		msg("popup_done", 1),
	},
}

var interfaces = []*Interface{
	&Display, &Registry, &Callback, &Compositor, &ShmPool, &Shm, &Buffer,
	&Surface, &Seat, &Pointer, &Keyboard, &Touch, &Output, &Shell, &ShellSurface,
}

var byName = func() map[string]*Interface {
	m := make(map[string]*Interface, len(interfaces))
	for _, iface := range interfaces {
		m[iface.Name] = iface
	}
	return m
}()

// Lookup resolves an interface descriptor by wire name.
func Lookup(name string) (*Interface, bool) {
	iface, ok := byName[name]
	return iface, ok
}

// All returns the supported descriptors in declaration order.
func All() []*Interface {
	out := make([]*Interface, len(interfaces))
	copy(out, interfaces)
	return out
}
