package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// IsSpawnJustPressed returns a boolean value indicating whether the generic spawn input is just pressed.
// This is used to handle both mouse and touch inputs.
func IsSpawnJustPressed() bool {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return true
	}
	return len(inpututil.AppendJustPressedTouchIDs(nil)) > 0
}

// SpawnPosition returns the screen position of the last spawn input.
func SpawnPosition() (int, int) {
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		return ebiten.TouchPosition(touchIDs[0])
	}
	return ebiten.CursorPosition()
}

// IsRemoveJustPressed returns a boolean value indicating whether the remove input is just pressed.
func IsRemoveJustPressed() bool {
	return inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
}

func IsPauseJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeySpace)
}

func IsStepJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyN)
}

func IsDebugJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyD)
}

func IsQuitJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}

func IsRightPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyRight)
}

func IsLeftPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyLeft)
}

func IsUpPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyUp)
}

func IsDownPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyDown)
}
