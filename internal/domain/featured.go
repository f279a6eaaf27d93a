package domain

// FeaturedProjects 精选项目白名单 (子串匹配)，顺序同时也是首页展示的优先级
var FeaturedProjects = []string{
	"aidguide_04",        // 机器人导航
	"neurospot",          // AI 健康
	"aura-backend",       // 面向视障用户的语音应用
	"vimyp",              // 环境项目
	"poligames",          // 游戏开发
	"ecocity",            // IoT 智慧城市
	"osyris-web",         // Web
	"sustainability-web", // React
}

// MaxFeatured 精选列表的固定长度
const MaxFeatured = 6
