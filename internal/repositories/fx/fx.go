package fx

import (
	"github.com/orgball2608/stories-engine/internal/repositories/receipt"
	"github.com/orgball2608/stories-engine/internal/repositories/story"
	"go.uber.org/fx"
)

var Module = fx.Options(
	story.Module,
	receipt.Module,
)
