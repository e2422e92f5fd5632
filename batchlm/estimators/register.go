package estimators

import "github.com/batchlm/batchlm"

func init() {
	batchlm.RegisterEstimator(batchlm.LSE, func() batchlm.Estimator { return LSE{} })
	batchlm.RegisterEstimator(batchlm.MLE, func() batchlm.Estimator { return MLE{} })
}
