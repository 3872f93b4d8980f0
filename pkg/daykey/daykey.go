package daykey

import (
	"log"
	"time"
)

// Layout 日期键格式，固定为 YYYY-MM-DD
const Layout = "2006-01-02"

// DefaultTimezone 默认时区
// 面板签到普遍按北京时间计天，"今天"必须跟用户所在面板一致，不能裸用 UTC
const DefaultTimezone = "Asia/Shanghai"

// Today 返回指定时区下今天的日期键
func Today(loc *time.Location) string {
	return FromTime(time.Now(), loc)
}

// FromTime 把时间戳换算成指定时区下的日期键
func FromTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(Layout)
}

// IsBefore 判断日期键 a 是否严格早于 b
// YYYY-MM-DD 格式下字典序即时间序，空串视为"从未"，早于一切
func IsBefore(a, b string) bool {
	if a == "" {
		return b != ""
	}
	return a < b
}

// LoadLocation 加载时区，失败时回退到默认时区
func LoadLocation(name string) *time.Location {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("[DayKey] 时区 %s 加载失败，回退 %s: %v", name, DefaultTimezone, err)
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			return time.Local
		}
	}
	return loc
}
