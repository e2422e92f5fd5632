package models

import "github.com/batchlm/batchlm"

func init() {
	batchlm.RegisterModel(batchlm.Linear1D, func() batchlm.Model { return Linear1D{} })
	batchlm.RegisterModel(batchlm.Gauss1D, func() batchlm.Model { return Gauss1D{} })
	batchlm.RegisterModel(batchlm.Gauss2D, func() batchlm.Model { return Gauss2D{} })
	batchlm.RegisterModel(batchlm.Gauss2DElliptic, func() batchlm.Model { return Gauss2DElliptic{} })
	batchlm.RegisterModel(batchlm.Gauss2DRotated, func() batchlm.Model { return Gauss2DRotated{} })
	batchlm.RegisterModel(batchlm.Cauchy2DElliptic, func() batchlm.Model { return Cauchy2DElliptic{} })
}
