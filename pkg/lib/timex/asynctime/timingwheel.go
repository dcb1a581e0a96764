/**
 * @Author: dingQingHui
 * @Description:
 * @File: timingwheel
 * @Version: 1.0.0
 * @Date: 2024/11/28 14:06
 */

package asynctime

import (
	"time"

	"github.com/RussellLuo/timingwheel"
)

var tw = timingwheel.NewTimingWheel(1*time.Millisecond, 3600)

func init() {
	tw.Start()
}

type everyScheduler struct {
	interval time.Duration
}

func (s *everyScheduler) Next(prev time.Time) time.Time {
	return prev.Add(s.interval)
}

// Every 按固定间隔重复执行，返回的 Timer 调用 Stop 取消
func Every(d time.Duration, f func()) *timingwheel.Timer {
	if d <= 0 {
		d = time.Second
	}
	return tw.ScheduleFunc(&everyScheduler{interval: d}, f)
}
