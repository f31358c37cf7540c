package tui

const Logo = `
 ▄▄    ▄▄  ▄▄▄▄▄▄▄▄  ▄▄▄▄▄▄▄▄  ▄▄▄▄▄▄▄▄  ▄▄▄▄▄▄
 ███   ██  ██▀▀▀▀▀▀  ██▀▀▀▀▀▀  ██▀▀▀▀▀▀  ██▀▀▀▀█▄
 ██▀█  ██  ██        ██        ██        ██    ██
 ██ ██ ██  ██████    ██████    ██████    ██    ██
 ██  █▄██  ██        ██        ██        ██    ██
 ██   ███  ██        ██▄▄▄▄▄▄  ██▄▄▄▄▄▄  ██▄▄▄▄█▀
 ▀▀    ▀▀  ▀▀        ▀▀▀▀▀▀▀▀  ▀▀▀▀▀▀▀▀  ▀▀▀▀▀▀`

type SplashState struct{}

func (m *Model) SplashView() string {
	return m.theme.TextAccent().Render(Logo)
}
